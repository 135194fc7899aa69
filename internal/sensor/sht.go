package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/croplink/fieldstation/internal/model"
)

const shtProbeName = "sht3x"

// High-repeatability single-shot measure command with clock stretching
// disabled; the datasheet worst-case conversion time is 15ms.
var shtMeasureCmd = []byte{0x2C, 0x06}

const shtMeasureDelay = 20 * time.Millisecond

// SHTProbe reads an SHT3x-class temperature/humidity sensor: write the
// measure command, wait, read 6 bytes (temp word + CRC, humidity word +
// CRC, CRC-8 poly 0x31 init 0xFF per word).
type SHTProbe struct {
	bus  Bus
	addr byte
}

func NewSHTProbe(bus Bus, addr byte) *SHTProbe {
	if addr == 0 {
		addr = 0x44
	}
	return &SHTProbe{bus: bus, addr: addr}
}

func (p *SHTProbe) Name() string { return shtProbeName }

func (p *SHTProbe) Channels() []string {
	return []string{model.ChannelTemperature, model.ChannelHumidity}
}

func (p *SHTProbe) Read(ctx context.Context) (map[string]float64, error) {
	if err := p.bus.WriteBytes(p.addr, shtMeasureCmd); err != nil {
		return nil, fmt.Errorf("sht measure write: %w", err)
	}

	select {
	case <-time.After(shtMeasureDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	payload, err := p.bus.ReadBytes(p.addr, 6)
	if err != nil {
		return nil, fmt.Errorf("sht response read: %w", err)
	}
	if len(payload) != 6 {
		return nil, fmt.Errorf("sht response: got %d bytes, want 6", len(payload))
	}
	if crc8(payload[0:2]) != payload[2] {
		return nil, fmt.Errorf("sht temperature checksum mismatch")
	}
	if crc8(payload[3:5]) != payload[5] {
		return nil, fmt.Errorf("sht humidity checksum mismatch")
	}

	rawT := binary.BigEndian.Uint16(payload[0:2])
	rawH := binary.BigEndian.Uint16(payload[3:5])

	return map[string]float64{
		model.ChannelTemperature: -45.0 + 175.0*float64(rawT)/65535.0,
		model.ChannelHumidity:    100.0 * float64(rawH) / 65535.0,
	}, nil
}

// crc8 is the SHT3x word checksum: polynomial 0x31, init 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
