package vb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	MinSramSize = 1024
	MaxSramSize = 16 * 1024 * 1024
)

// Sram is battery backed cartridge RAM. Cartridges don't declare how much of
// it they have, so the store starts empty and doubles (from a 1 KiB floor)
// whenever an access lands beyond its current size.
type Sram struct {
	data []byte
}

// NewSram creates a Sram, buf may be empty.
func NewSram(buf []byte) (*Sram, error) {
	size := len(buf)
	if size != 0 && (size < MinSramSize || size > MaxSramSize || !isPowerOfTwo(size)) {
		return nil, fmt.Errorf("%w: %d bytes, want a power of two between %d and %d", ErrInvalidSramSize, size, MinSramSize, MaxSramSize)
	}
	data := make([]byte, size)
	copy(data, buf)
	return &Sram{data}, nil
}

// LoadSram reads a SRAM image, a missing file is an empty SRAM.
func LoadSram(path string) (*Sram, error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSram(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to read SRAM: %w", err)
	}
	return NewSram(buf)
}

// Size returns the current size in bytes.
func (s *Sram) Size() int {
	return len(s.data)
}

// Bytes returns the current image, for persisting.
func (s *Sram) Bytes() []byte {
	return s.data
}

// Save writes the image to path, nothing is written while the SRAM is empty.
func (s *Sram) Save(path string) error {
	if len(s.data) == 0 {
		return nil
	}
	if err := os.WriteFile(path, s.data, 0644); err != nil {
		return fmt.Errorf("Failed to write SRAM: %w", err)
	}
	return nil
}

// grow makes sure offset is covered.
func (s *Sram) grow(offset uint32) {
	size := len(s.data)
	for int(offset) >= size && size < MaxSramSize {
		if size == 0 {
			size = MinSramSize
		} else {
			size *= 2
		}
	}
	if size != len(s.data) {
		data := make([]byte, size)
		copy(data, s.data)
		s.data = data
	}
}

func (s *Sram) mask(address uint32) uint32 {
	address &= MaxSramSize - 1
	s.grow(address)
	return address & uint32(len(s.data)-1)
}

// peekByte reads without growing, offsets past the current size read 0.
func (s *Sram) peekByte(address uint32) byte {
	address &= MaxSramSize - 1
	if int(address) >= len(s.data) {
		return 0
	}
	return s.data[address]
}

func (s *Sram) readByte(address uint32) byte {
	return s.data[s.mask(address)]
}

func (s *Sram) writeByte(address uint32, data byte) {
	s.data[s.mask(address)] = data
}

func (s *Sram) readHalfword(address uint32) uint16 {
	address = s.mask(address &^ 1)
	return uint16(s.data[address]) | uint16(s.data[address+1])<<8
}

func (s *Sram) writeHalfword(address uint32, data uint16) {
	address = s.mask(address &^ 1)
	s.data[address] = byte(data)
	s.data[address+1] = byte(data >> 8)
}
