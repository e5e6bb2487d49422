package vb

import (
	"fmt"
	"math"
)

// V810 emulates the NEC V810, the 32-bit RISC CPU of the Virtual Boy running
// at 20MHz.
// References:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#cpu
//   NEC V810 Family 32-bit Microprocessor User's Manual (U10082EJ1V0UM00)

const CPUFrequency = 20000000

// Bus is what the CPU reads instructions and data from, implemented by
// Interconnect.
type Bus interface {
	ReadByte(address uint32) (byte, error)
	ReadHalfword(address uint32) (uint16, error)
	ReadWord(address uint32) (uint32, error)
	WriteByte(address uint32, data byte) error
	WriteHalfword(address uint32, data uint16) error
	WriteWord(address uint32, data uint32) error
}

// System register numbers for LDSR/STSR.
const (
	sysEIPC  = 0
	sysEIPSW = 1
	sysFEPC  = 2
	sysFEPSW = 3
	sysECR   = 4
	sysPSW   = 5
	sysPIR   = 6
	sysTKCW  = 7
	sysCHCW  = 24
	sysADTRE = 25
)

const (
	resetPC  uint32 = 0xfffffff0
	resetPSW uint32 = 0x00008000
	resetECR uint32 = 0x0000fff0

	// processor ID, "NV810"
	pirValue uint32 = 0x00005346
	// task control word, the FPU rounds to nearest and never traps on
	// inexact results.
	tkcwValue uint32 = 0x000000e0
)

// Exception codes.
const (
	exceptionFPReservedOperand uint16 = 0xff60
	exceptionFPOverflow        uint16 = 0xff64
	exceptionFPZeroDivision    uint16 = 0xff68
	exceptionFPInvalid         uint16 = 0xff70
	exceptionZeroDivision      uint16 = 0xff80
	exceptionTrap0             uint16 = 0xffa0
	duplexedExceptionAddress   uint32 = 0xffffffd0
)

// psw is the program status word.
// bit    19-16 15 14 13 12 8   7   6   5   4   3  2  1 0
//        I     NP EP AE ID FIV FZD FOV FUD FPR CY OV S Z
type psw struct {
	z   bool // zero
	s   bool // sign
	ov  bool // overflow
	cy  bool // carry
	fpr bool // floating precision degradation
	fud bool // floating underflow
	fov bool // floating overflow
	fzd bool // floating zero divide
	fiv bool // floating invalid operation
	id  bool // interrupt disable
	ae  bool // address trap enable
	ep  bool // exception pending
	np  bool // NMI pending
	i   int  // interrupt mask level
}

// encode encodes the psw to a word.
func (p *psw) encode() uint32 {
	var res uint32
	bits := []struct {
		set bool
		bit uint
	}{
		{p.z, 0}, {p.s, 1}, {p.ov, 2}, {p.cy, 3},
		{p.fpr, 4}, {p.fud, 5}, {p.fov, 6}, {p.fzd, 7}, {p.fiv, 8},
		{p.id, 12}, {p.ae, 13}, {p.ep, 14}, {p.np, 15},
	}
	for _, b := range bits {
		if b.set {
			res |= 1 << b.bit
		}
	}
	return res | uint32(p.i&0xf)<<16
}

// decodeFrom decodes a word to the psw.
func (p *psw) decodeFrom(data uint32) {
	p.z = data&(1<<0) != 0
	p.s = data&(1<<1) != 0
	p.ov = data&(1<<2) != 0
	p.cy = data&(1<<3) != 0
	p.fpr = data&(1<<4) != 0
	p.fud = data&(1<<5) != 0
	p.fov = data&(1<<6) != 0
	p.fzd = data&(1<<7) != 0
	p.fiv = data&(1<<8) != 0
	p.id = data&(1<<12) != 0
	p.ae = data&(1<<13) != 0
	p.ep = data&(1<<14) != 0
	p.np = data&(1<<15) != 0
	p.i = int(data>>16) & 0xf
}

// setZS sets zero and sign from a result and clears overflow, the flags every
// logical operation produces.
func (p *psw) setZS(res uint32) {
	p.z = res == 0
	p.s = res&0x80000000 != 0
	p.ov = false
}

// CHCW bits
const (
	chcwICC = 1 << 0 // clear
	chcwICE = 1 << 1 // enable
)

type V810 struct {
	regs [32]uint32 // r0 is never written, see reg and setReg
	pc   uint32
	psw  psw

	eipc  uint32
	eipsw uint32
	fepc  uint32
	fepsw uint32
	ecr   uint32
	chcw  uint32
	adtre uint32

	halted bool

	cache       *Cache
	bus         Bus
	watchpoints map[uint32]bool
	watchpoint  bool // set by a load/store hitting a watchpoint in the current step

	lastExecution string // For debug
}

// NewV810 creates a CPU in its reset state.
func NewV810(bus Bus) *V810 {
	c := &V810{
		bus:         bus,
		cache:       NewCache(),
		watchpoints: map[uint32]bool{},
	}
	c.Reset()
	return c
}

// Reset puts the CPU into its power on state, watchpoints are kept.
func (c *V810) Reset() {
	c.regs = [32]uint32{}
	c.pc = resetPC
	c.psw.decodeFrom(resetPSW)
	c.eipc, c.eipsw, c.fepc, c.fepsw = 0, 0, 0, 0
	c.ecr = resetECR
	c.chcw = 0
	c.adtre = 0
	c.halted = false
	c.cache = NewCache()
	c.lastExecution = ""
}

func (c *V810) String() string {
	return fmt.Sprintf("pc=0x%08x psw=0x%08x eipc=0x%08x eipsw=0x%08x ecr=0x%08x halted=%v",
		c.pc, c.psw.encode(), c.eipc, c.eipsw, c.ecr, c.halted)
}

func (c *V810) reg(i int) uint32 {
	if i == 0 {
		return 0
	}
	return c.regs[i]
}

func (c *V810) setReg(i int, value uint32) {
	if i != 0 {
		c.regs[i] = value
	}
}

// regFloat reinterprets a register as an IEEE 754 single.
func (c *V810) regFloat(i int) float32 {
	return math.Float32frombits(c.reg(i))
}

func (c *V810) setRegFloat(i int, value float32) {
	c.setReg(i, math.Float32bits(value))
}

func (c *V810) PC() uint32 {
	return c.pc
}

func (c *V810) SetPC(pc uint32) {
	c.pc = pc
}

// Reg returns general purpose register i, r0 always reads 0.
func (c *V810) Reg(i int) uint32 {
	return c.reg(i & 31)
}

// SetReg writes general purpose register i, writes to r0 are discarded.
func (c *V810) SetReg(i int, value uint32) {
	c.setReg(i&31, value)
}

func (c *V810) PSW() uint32 {
	return c.psw.encode()
}

func (c *V810) SetPSW(value uint32) {
	c.psw.decodeFrom(value)
}

func (c *V810) EIPC() uint32 {
	return c.eipc
}

func (c *V810) EIPSW() uint32 {
	return c.eipsw
}

func (c *V810) ECR() uint32 {
	return c.ecr
}

// Halted reports whether the CPU is parked on a HALT waiting for an interrupt.
func (c *V810) Halted() bool {
	return c.halted
}

func (c *V810) Cache() *Cache {
	return c.cache
}

// LastExecution returns the disassembled mnemonic of the last instruction.
func (c *V810) LastExecution() string {
	return c.lastExecution
}

// AddWatchpoint makes loads and stores touching address report a trigger.
func (c *V810) AddWatchpoint(address uint32) {
	c.watchpoints[address] = true
}

func (c *V810) RemoveWatchpoint(address uint32) {
	delete(c.watchpoints, address)
}

func (c *V810) Watchpoints() []uint32 {
	res := make([]uint32, 0, len(c.watchpoints))
	for a := range c.watchpoints {
		res = append(res, a)
	}
	return res
}

func (c *V810) checkWatchpoint(address uint32) {
	if c.watchpoints[address] {
		c.watchpoint = true
	}
}

// RequestInterrupt raises a maskable interrupt, code is the exception code
// (0xfe00 | level<<4). Requests below the mask level are dropped, so is
// everything while PSW.NP, PSW.EP or PSW.ID is set.
func (c *V810) RequestInterrupt(code uint16) {
	if c.psw.np || c.psw.ep || c.psw.id {
		return
	}
	level := int(code>>4) & 0xf
	if level < c.psw.i {
		return
	}
	// A parked HALT is resumed by RETI and parks again.
	c.eipc = c.pc
	c.halted = false
	c.eipsw = c.psw.encode()
	c.ecr = c.ecr&0xffff0000 | uint32(code)
	c.psw.ep = true
	c.psw.id = true
	c.psw.ae = false
	c.psw.i = level + 1
	if c.psw.i > 15 {
		c.psw.i = 15
	}
	c.pc = handlerAddress(code)
}

// handlerAddress returns the entry point for an exception code, codes
// sharing a handler only differ in the low nibble.
func handlerAddress(code uint16) uint32 {
	return 0xffff0000 | uint32(code&0xfff0)
}

// raiseException enters an exception handler, returnPC is where RETI goes.
// An exception raised while another one is pending is duplexed.
func (c *V810) raiseException(code uint16, returnPC uint32) error {
	if c.psw.np {
		return fmt.Errorf("Fatal exception: code=0x%04x, pc=0x%08x, fepc=0x%08x", code, c.pc, c.fepc)
	}
	if c.psw.ep {
		c.fepc = returnPC
		c.fepsw = c.psw.encode()
		c.ecr = c.ecr&0x0000ffff | uint32(code)<<16
		c.psw.np = true
		c.psw.id = true
		c.psw.ae = false
		c.pc = duplexedExceptionAddress
		return nil
	}
	c.eipc = returnPC
	c.eipsw = c.psw.encode()
	c.ecr = c.ecr&0xffff0000 | uint32(code)
	c.psw.ep = true
	c.psw.id = true
	c.psw.ae = false
	c.pc = handlerAddress(code)
	return nil
}

func (c *V810) readSystemRegister(id int) uint32 {
	switch id {
	case sysEIPC:
		return c.eipc
	case sysEIPSW:
		return c.eipsw
	case sysFEPC:
		return c.fepc
	case sysFEPSW:
		return c.fepsw
	case sysECR:
		return c.ecr
	case sysPSW:
		return c.psw.encode()
	case sysPIR:
		return pirValue
	case sysTKCW:
		return tkcwValue
	case sysCHCW:
		return c.chcw & chcwICE
	case sysADTRE:
		return c.adtre
	}
	return 0
}

func (c *V810) writeSystemRegister(id int, value uint32) {
	switch id {
	case sysEIPC:
		c.eipc = value &^ 1
	case sysEIPSW:
		c.eipsw = value
	case sysFEPC:
		c.fepc = value &^ 1
	case sysFEPSW:
		c.fepsw = value
	case sysPSW:
		c.psw.decodeFrom(value)
	case sysCHCW:
		c.writeCacheControl(value)
	case sysADTRE:
		c.adtre = value &^ 1
	}
	// ECR, PIR and TKCW are read only.
}

// writeCacheControl implements CHCW
// bit    31-20 19-8 5   4   1   0
//        CEN   CEC  ICR ICD ICE ICC
func (c *V810) writeCacheControl(value uint32) {
	c.chcw = value
	c.cache.setEnabled(value&chcwICE != 0)
	if value&chcwICC != 0 {
		c.cache.clear(int(value>>20), int(value>>8)&0xfff)
	}
}

// Step executes an instruction, it returns the cycles it took and whether a
// watchpoint was hit.
func (c *V810) Step() (int, bool, error) {
	c.watchpoint = false
	inst, err := c.fetch()
	if err != nil {
		return 0, false, err
	}
	c.lastExecution = inst.String()
	cycles, err := c.execute(&inst)
	return cycles, c.watchpoint, err
}

// fetch reads and decodes the instruction at pc.
func (c *V810) fetch() (instruction, error) {
	c.cache.access(c.pc)
	first, err := c.bus.ReadHalfword(c.pc)
	if err != nil {
		return instruction{}, err
	}
	info := &opcodeTable[first>>10]
	var second uint16
	if info.format.size() == 4 {
		c.cache.access(c.pc + 2)
		second, err = c.bus.ReadHalfword(c.pc + 2)
		if err != nil {
			return instruction{}, err
		}
	}
	inst := decode(first, second)
	if inst.op == opIllegal {
		return inst, &IllegalInstructionError{PC: c.pc, Opcode: first}
	}
	return inst, nil
}
