package vb

import (
	"fmt"

	"github.com/golang/glog"
)

// Interrupt vectors raised through Cycles.
const (
	TimerInterruptVector uint16 = 0xfe10
	VipInterruptVector   uint16 = 0xfe40
)

// Hardware control registers (address & 0x3f).
const (
	regCCR  = 0x00
	regCCSR = 0x04
	regCDTR = 0x08
	regCDRR = 0x0c
	regSDLR = 0x10
	regSDHR = 0x14
	regTLR  = 0x18
	regTHR  = 0x1c
	regTCR  = 0x20
	regWCR  = 0x24
	regSCR  = 0x28
)

// Interconnect connects the CPU to every device on the bus.
// Memory map (address & 0x07ffffff)
// 0x00000000 - 0x00FFFFFF	VIP (mirrored every 0x80000)
// 0x01000000 - 0x01FFFFFF	VSU (mirrored every 0x800)
// 0x02000000 - 0x02FFFFFF	Hardware control registers (mirrored every 0x40)
// 0x03000000 - 0x03FFFFFF	Unmapped
// 0x04000000 - 0x04FFFFFF	Cartridge expansion
// 0x05000000 - 0x05FFFFFF	WRAM
// 0x06000000 - 0x06FFFFFF	Cartridge RAM
// 0x07000000 - 0x07FFFFFF	Cartridge ROM
type Interconnect struct {
	rom      *Rom
	wram     *Wram
	sram     *Sram
	vip      *Vip
	vsu      *Vsu
	timer    *Timer
	gamePad  *GamePad
	linkPort *LinkPort

	waitControl byte
}

// NewInterconnect creates a bus with fresh devices around rom and sram.
func NewInterconnect(rom *Rom, sram *Sram) *Interconnect {
	return &Interconnect{
		rom:      rom,
		wram:     NewWram(),
		sram:     sram,
		vip:      NewVip(),
		vsu:      NewVsu(),
		timer:    NewTimer(),
		gamePad:  NewGamePad(),
		linkPort: NewLinkPort(),
	}
}

func (b *Interconnect) Rom() *Rom {
	return b.rom
}

func (b *Interconnect) Sram() *Sram {
	return b.sram
}

func (b *Interconnect) Vip() *Vip {
	return b.vip
}

func (b *Interconnect) Vsu() *Vsu {
	return b.vsu
}

func (b *Interconnect) Timer() *Timer {
	return b.timer
}

func (b *Interconnect) GamePad() *GamePad {
	return b.gamePad
}

func (b *Interconnect) readRegister(address uint32) (byte, error) {
	switch address & 0x3f {
	case regCCR:
		return b.linkPort.readControl(), nil
	case regCCSR:
		return b.linkPort.readAuxControl(), nil
	case regCDTR:
		return b.linkPort.readTransmitData(), nil
	case regCDRR:
		return b.linkPort.readReceiveData(), nil
	case regSDLR:
		return b.gamePad.readInputLow(), nil
	case regSDHR:
		return b.gamePad.readInputHigh(), nil
	case regTLR:
		return b.timer.readCounterReloadLow(), nil
	case regTHR:
		return b.timer.readCounterReloadHigh(), nil
	case regTCR:
		return b.timer.readControl(), nil
	case regWCR:
		return b.waitControl | 0xfc, nil
	case regSCR:
		return b.gamePad.readControl(), nil
	}
	return 0, &BusError{Address: address, Width: 1, Kind: accessRead}
}

func (b *Interconnect) writeRegister(address uint32, data byte) error {
	switch address & 0x3f {
	case regCCR:
		b.linkPort.writeControl(data)
	case regCCSR:
		b.linkPort.writeAuxControl(data)
	case regCDTR:
		b.linkPort.writeTransmitData(data)
	case regCDRR:
		glog.V(1).Infof("Ignored CDRR write: data=0x%02x\n", data)
	case regSDLR, regSDHR:
		glog.V(1).Infof("Ignored game pad data write: address=0x%08x, data=0x%02x\n", address, data)
	case regTLR:
		b.timer.writeCounterReloadLow(data)
	case regTHR:
		b.timer.writeCounterReloadHigh(data)
	case regTCR:
		b.timer.writeControl(data)
	case regWCR:
		// Wait states are not applied to bus timing.
		glog.V(1).Infof("WCR write: data=0x%02x\n", data)
		b.waitControl = data & 0x03
	case regSCR:
		b.gamePad.writeControl(data)
	default:
		return &BusError{Address: address, Width: 1, Kind: accessWrite, Value: uint32(data)}
	}
	return nil
}

// ReadByte reads a byte.
func (b *Interconnect) ReadByte(address uint32) (byte, error) {
	address &= 0x07ffffff
	switch address >> 24 {
	case 0:
		return b.vip.readByte(address & 0x7ffff), nil
	case 1:
		return b.vsu.readByte(address & 0x7ff), nil
	case 2:
		return b.readRegister(address)
	case 4:
		glog.V(1).Infof("Unimplemented cartridge expansion read: address=0x%08x\n", address)
		return 0, nil
	case 5:
		return b.wram.readByte(address), nil
	case 6:
		return b.sram.readByte(address), nil
	case 7:
		return b.rom.readByte(address), nil
	}
	return 0, &BusError{Address: address, Width: 1, Kind: accessRead}
}

// PeekByte reads a byte for the debugger, unlike ReadByte it never grows the
// SRAM.
func (b *Interconnect) PeekByte(address uint32) (byte, error) {
	address &= 0x07ffffff
	if address>>24 == 6 {
		return b.sram.peekByte(address), nil
	}
	return b.ReadByte(address)
}

// ReadHalfword reads 2 bytes, the low address bit is ignored.
func (b *Interconnect) ReadHalfword(address uint32) (uint16, error) {
	address &= 0x07fffffe
	switch address >> 24 {
	case 0:
		return b.vip.readHalfword(address & 0x7ffff), nil
	case 1:
		return uint16(b.vsu.readByte(address & 0x7ff)), nil
	case 2:
		// The registers are 8 bits wide.
		data, err := b.readRegister(address)
		if err != nil {
			return 0, &BusError{Address: address, Width: 2, Kind: accessRead}
		}
		return uint16(data), nil
	case 4:
		glog.V(1).Infof("Unimplemented cartridge expansion read: address=0x%08x\n", address)
		return 0, nil
	case 5:
		return b.wram.readHalfword(address), nil
	case 6:
		return b.sram.readHalfword(address), nil
	case 7:
		return b.rom.readHalfword(address), nil
	}
	return 0, &BusError{Address: address, Width: 2, Kind: accessRead}
}

// ReadWord reads 4 bytes as two halfwords, low halfword first.
func (b *Interconnect) ReadWord(address uint32) (uint32, error) {
	address &^= 3
	l, err := b.ReadHalfword(address)
	if err != nil {
		return 0, err
	}
	h, err := b.ReadHalfword(address + 2)
	if err != nil {
		return 0, err
	}
	return uint32(h)<<16 | uint32(l), nil
}

// WriteByte writes a byte.
func (b *Interconnect) WriteByte(address uint32, data byte) error {
	address &= 0x07ffffff
	switch address >> 24 {
	case 0:
		b.vip.writeByte(address&0x7ffff, data)
	case 1:
		b.vsu.writeByte(address&0x7ff, data)
	case 2:
		return b.writeRegister(address, data)
	case 4:
		glog.V(1).Infof("Unimplemented cartridge expansion write: address=0x%08x, data=0x%02x\n", address, data)
	case 5:
		b.wram.writeByte(address, data)
	case 6:
		b.sram.writeByte(address, data)
	case 7:
		return fmt.Errorf("Writing data to ROM not allowed: address=0x%08x, data=0x%02x", address, data)
	default:
		return &BusError{Address: address, Width: 1, Kind: accessWrite, Value: uint32(data)}
	}
	return nil
}

// WriteHalfword writes 2 bytes, the low address bit is ignored.
func (b *Interconnect) WriteHalfword(address uint32, data uint16) error {
	address &= 0x07fffffe
	switch address >> 24 {
	case 0:
		b.vip.writeHalfword(address&0x7ffff, data)
	case 1:
		b.vsu.writeByte(address&0x7ff, byte(data))
	case 2:
		if err := b.writeRegister(address, byte(data)); err != nil {
			return &BusError{Address: address, Width: 2, Kind: accessWrite, Value: uint32(data)}
		}
	case 4:
		glog.V(1).Infof("Unimplemented cartridge expansion write: address=0x%08x, data=0x%04x\n", address, data)
	case 5:
		b.wram.writeHalfword(address, data)
	case 6:
		b.sram.writeHalfword(address, data)
	case 7:
		return fmt.Errorf("Writing data to ROM not allowed: address=0x%08x, data=0x%04x", address, data)
	default:
		return &BusError{Address: address, Width: 2, Kind: accessWrite, Value: uint32(data)}
	}
	return nil
}

// WriteWord writes 4 bytes as two halfwords, low halfword first.
func (b *Interconnect) WriteWord(address uint32, data uint32) error {
	address &^= 3
	if err := b.WriteHalfword(address, uint16(data)); err != nil {
		return err
	}
	return b.WriteHalfword(address+2, uint16(data>>16))
}

// Cycles advances the timer, the VIP and the VSU by cycles and returns the
// interrupt vector to raise, if any. The VIP is checked last and wins.
func (b *Interconnect) Cycles(cycles int, video VideoSink, audio AudioSink) (uint16, bool) {
	var vector uint16
	ok := false
	if b.timer.Cycles(cycles) {
		vector, ok = TimerInterruptVector, true
	}
	if b.vip.Cycles(cycles, video) {
		vector, ok = VipInterruptVector, true
	}
	b.vsu.Cycles(cycles, audio)
	return vector, ok
}
