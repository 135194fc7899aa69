//go:build linux

package sensor

import (
	"fmt"
	"os"
	"sync"
	"syscall"
)

// i2cSlave is the I2C_SLAVE ioctl request (linux/i2c-dev.h).
const i2cSlave = 0x0703

// DevBus is the /dev/i2c-N implementation of Bus. One handle is opened at
// startup and passed to the reader; Close belongs to the process shutdown
// path, not to individual probes.
type DevBus struct {
	mu   sync.Mutex
	file *os.File
	addr byte
}

func OpenDevBus(path string) (*DevBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", path, err)
	}
	return &DevBus{file: f}, nil
}

func (b *DevBus) setAddr(addr byte) error {
	if b.addr == addr {
		return nil
	}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, b.file.Fd(), i2cSlave, uintptr(addr))
	if errno != 0 {
		return fmt.Errorf("ioctl I2C_SLAVE 0x%02X: %w", addr, errno)
	}
	b.addr = addr
	return nil
}

func (b *DevBus) WriteBytes(addr byte, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.setAddr(addr); err != nil {
		return err
	}
	n, err := b.file.Write(value)
	if err != nil {
		return fmt.Errorf("i2c write 0x%02X: %w", addr, err)
	}
	if n != len(value) {
		return fmt.Errorf("i2c write 0x%02X: short write (%d/%d)", addr, n, len(value))
	}
	return nil
}

func (b *DevBus) ReadBytes(addr byte, num int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.setAddr(addr); err != nil {
		return nil, err
	}
	buf := make([]byte, num)
	n, err := b.file.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("i2c read 0x%02X: %w", addr, err)
	}
	return buf[:n], nil
}

func (b *DevBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
