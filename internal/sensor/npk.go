package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/croplink/fieldstation/internal/model"
)

const npkProbeName = "npk-board"

// The board firmware needs a short processing delay between the query
// write and the response read. Empirically stable; not configurable.
const npkReadDelay = 100 * time.Millisecond

// npkQuery asks the board for all three nutrient registers in one shot.
var npkQuery = []byte{0x01, 0x03}

// NPKProbe reads an I2C-attached NPK soil board.
// Protocol observed on the default address 0x4d:
//   - Write the 2-byte query
//   - Wait npkReadDelay
//   - Read 8 bytes: N hi/lo, P hi/lo, K hi/lo (mg/kg, big endian),
//     XOR checksum of bytes 0..5, status (0x01 => OK)
type NPKProbe struct {
	bus  Bus
	addr byte
}

func NewNPKProbe(bus Bus, addr byte) *NPKProbe {
	if addr == 0 {
		addr = 0x4d
	}
	return &NPKProbe{bus: bus, addr: addr}
}

func (p *NPKProbe) Name() string { return npkProbeName }

func (p *NPKProbe) Channels() []string {
	return []string{model.ChannelNitrogen, model.ChannelPhosphorus, model.ChannelPotassium}
}

func (p *NPKProbe) Read(ctx context.Context) (map[string]float64, error) {
	if err := p.bus.WriteBytes(p.addr, npkQuery); err != nil {
		return nil, fmt.Errorf("npk query write: %w", err)
	}

	select {
	case <-time.After(npkReadDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	payload, err := p.bus.ReadBytes(p.addr, 8)
	if err != nil {
		return nil, fmt.Errorf("npk response read: %w", err)
	}
	if len(payload) != 8 {
		return nil, fmt.Errorf("npk response: got %d bytes, want 8", len(payload))
	}
	if payload[7] != 0x01 {
		return nil, fmt.Errorf("npk board status 0x%02X", payload[7])
	}
	var sum byte
	for _, b := range payload[:6] {
		sum ^= b
	}
	if sum != payload[6] {
		return nil, fmt.Errorf("npk checksum mismatch: got 0x%02X, computed 0x%02X", payload[6], sum)
	}

	return map[string]float64{
		model.ChannelNitrogen:   float64(binary.BigEndian.Uint16(payload[0:2])),
		model.ChannelPhosphorus: float64(binary.BigEndian.Uint16(payload[2:4])),
		model.ChannelPotassium:  float64(binary.BigEndian.Uint16(payload[4:6])),
	}, nil
}
