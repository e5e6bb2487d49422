package vb

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRomSize  = errors.New("invalid ROM size")
	ErrInvalidSramSize = errors.New("invalid SRAM size")
)

type accessKind int

const (
	accessRead accessKind = iota
	accessWrite
)

func (k accessKind) String() string {
	if k == accessWrite {
		return "write"
	}
	return "read"
}

// BusError reports an access the interconnect can't map to any device.
// The hardware behaviour for these is undefined, so emulation has to stop.
type BusError struct {
	Address uint32
	Width   int // in bytes
	Kind    accessKind
	Value   uint32
}

func (e *BusError) Error() string {
	if e.Kind == accessWrite {
		return fmt.Sprintf("Unknown bus write: address=0x%08x, width=%d, data=0x%0*x", e.Address, e.Width, e.Width*2, e.Value)
	}
	return fmt.Sprintf("Unknown bus read: address=0x%08x, width=%d", e.Address, e.Width)
}

// IllegalInstructionError reports an opcode bit pattern the V810 doesn't define.
type IllegalInstructionError struct {
	PC     uint32
	Opcode uint16
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("Tried to execute illegal instruction: pc=0x%08x, opcode=0x%04x", e.PC, e.Opcode)
}
