//go:build !linux

package sensor

import "errors"

// DevBus is only implemented for linux i2c-dev; other platforms run the
// station in sim mode.
type DevBus struct{}

func OpenDevBus(path string) (*DevBus, error) {
	return nil, errors.New("i2c bus access is not supported on this platform; set SIM_MODE=true")
}

func (b *DevBus) WriteBytes(addr byte, value []byte) error { return errors.New("i2c unsupported") }
func (b *DevBus) ReadBytes(addr byte, num int) ([]byte, error) {
	return nil, errors.New("i2c unsupported")
}
func (b *DevBus) Close() error { return nil }
