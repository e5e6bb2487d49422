package vb

import (
	"fmt"
	"os"
)

const (
	MinRomSize = 1024
	MaxRomSize = 16 * 1024 * 1024
)

// Rom is a cartridge ROM image. It's mirrored across the whole cartridge ROM
// window, so every address is masked by size-1.
type Rom struct {
	data []byte
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NewRom creates a Rom from a raw image, the image is copied.
func NewRom(buf []byte) (*Rom, error) {
	size := len(buf)
	if size < MinRomSize || size > MaxRomSize || !isPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: %d bytes, want a power of two between %d and %d", ErrInvalidRomSize, size, MinRomSize, MaxRomSize)
	}
	data := make([]byte, size)
	copy(data, buf)
	return &Rom{data}, nil
}

// LoadRom reads a ROM image from the file system.
func LoadRom(path string) (*Rom, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read ROM: %w", err)
	}
	return NewRom(buf)
}

// Size returns the image size in bytes.
func (r *Rom) Size() int {
	return len(r.data)
}

func (r *Rom) mask(address uint32) uint32 {
	return address & uint32(len(r.data)-1)
}

func (r *Rom) readByte(address uint32) byte {
	return r.data[r.mask(address)]
}

func (r *Rom) readHalfword(address uint32) uint16 {
	address = r.mask(address &^ 1)
	return uint16(r.data[address]) | uint16(r.data[address+1])<<8
}
