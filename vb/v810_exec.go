package vb

const signBit = 0x80000000

// condition reports whether cond holds for the current flags. Codes 8-15
// are the negations of 0-7, so 13 (NOP) never holds.
func (c *V810) condition(cond condition) bool {
	p := &c.psw
	var res bool
	switch cond & 7 {
	case 0: // V
		res = p.ov
	case 1: // C, L
		res = p.cy
	case 2: // Z, E
		res = p.z
	case 3: // NH
		res = p.cy || p.z
	case 4: // N
		res = p.s
	case 5: // always
		res = true
	case 6: // LT
		res = p.s != p.ov
	case 7: // LE
		res = p.s != p.ov || p.z
	}
	if cond&8 != 0 {
		return !res
	}
	return res
}

func (c *V810) add(lhs, rhs uint32) uint32 {
	res := lhs + rhs
	c.psw.z = res == 0
	c.psw.s = res&signBit != 0
	c.psw.ov = (^(lhs^rhs)&(rhs^res))&signBit != 0
	c.psw.cy = res < lhs
	return res
}

func (c *V810) sub(lhs, rhs uint32) uint32 {
	res := lhs - rhs
	c.psw.z = res == 0
	c.psw.s = res&signBit != 0
	c.psw.ov = ((lhs^rhs)&^(rhs^res))&signBit != 0
	c.psw.cy = rhs > lhs
	return res
}

// Shifts leave the last bit shifted out in CY, a shift by 0 clears it.
func (c *V810) shl(value, shift uint32) uint32 {
	shift &= 31
	res := value << shift
	c.psw.setZS(res)
	c.psw.cy = shift != 0 && (value>>(32-shift))&1 != 0
	return res
}

func (c *V810) shr(value, shift uint32) uint32 {
	shift &= 31
	res := value >> shift
	c.psw.setZS(res)
	c.psw.cy = shift != 0 && (value>>(shift-1))&1 != 0
	return res
}

func (c *V810) sar(value, shift uint32) uint32 {
	shift &= 31
	res := uint32(int32(value) >> shift)
	c.psw.setZS(res)
	c.psw.cy = shift != 0 && (value>>(shift-1))&1 != 0
	return res
}

// mul stores the low word in reg2 and the high word in r30, overflow is set
// when the product doesn't fit in 32 bits.
func (c *V810) mul(reg2 int, lhs, rhs uint32) {
	prod := int64(int32(lhs)) * int64(int32(rhs))
	lo := uint32(prod)
	c.psw.z = lo == 0
	c.psw.s = lo&signBit != 0
	c.psw.ov = prod != int64(int32(lo))
	c.setReg(30, uint32(uint64(prod)>>32))
	c.setReg(reg2, lo)
}

func (c *V810) mulu(reg2 int, lhs, rhs uint32) {
	prod := uint64(lhs) * uint64(rhs)
	lo := uint32(prod)
	c.psw.z = lo == 0
	c.psw.s = lo&signBit != 0
	c.psw.ov = prod>>32 != 0
	c.setReg(30, uint32(prod>>32))
	c.setReg(reg2, lo)
}

// div stores the quotient in reg2 and the remainder in r30. The divisor has
// been checked against 0.
func (c *V810) div(reg2 int, lhs, rhs uint32) {
	var q, r uint32
	if lhs == signBit && rhs == 0xffffffff {
		q, r = lhs, 0
		c.psw.ov = true
	} else {
		q = uint32(int32(lhs) / int32(rhs))
		r = uint32(int32(lhs) % int32(rhs))
		c.psw.ov = false
	}
	c.psw.z = q == 0
	c.psw.s = q&signBit != 0
	c.setReg(30, r)
	c.setReg(reg2, q)
}

func (c *V810) divu(reg2 int, lhs, rhs uint32) {
	q, r := lhs/rhs, lhs%rhs
	c.psw.setZS(q)
	c.setReg(30, r)
	c.setReg(reg2, q)
}

// execute runs a decoded instruction and returns its cycles.
func (c *V810) execute(inst *instruction) (int, error) {
	pc := c.pc
	next := pc + inst.size()
	cycles := inst.info.cycles
	r1 := c.reg(inst.reg1)
	r2 := c.reg(inst.reg2)
	imm5 := uint32(signExtend(inst.imm, 5))
	imm16 := uint32(int32(int16(inst.imm)))

	switch inst.op {
	case opMOV:
		c.setReg(inst.reg2, r1)
	case opADD:
		c.setReg(inst.reg2, c.add(r2, r1))
	case opSUB:
		c.setReg(inst.reg2, c.sub(r2, r1))
	case opCMP:
		c.sub(r2, r1)
	case opSHL:
		c.setReg(inst.reg2, c.shl(r2, r1))
	case opSHR:
		c.setReg(inst.reg2, c.shr(r2, r1))
	case opJMP:
		next = r1 &^ 1
	case opSAR:
		c.setReg(inst.reg2, c.sar(r2, r1))
	case opMUL:
		c.mul(inst.reg2, r2, r1)
	case opMULU:
		c.mulu(inst.reg2, r2, r1)
	case opDIV, opDIVU:
		if r1 == 0 {
			return cycles, c.raiseException(exceptionZeroDivision, pc)
		}
		if inst.op == opDIV {
			c.div(inst.reg2, r2, r1)
		} else {
			c.divu(inst.reg2, r2, r1)
		}
	case opOR:
		c.setReg(inst.reg2, c.logical(r2|r1))
	case opAND:
		c.setReg(inst.reg2, c.logical(r2&r1))
	case opXOR:
		c.setReg(inst.reg2, c.logical(r2^r1))
	case opNOT:
		c.setReg(inst.reg2, c.logical(^r1))

	case opMOVImm:
		c.setReg(inst.reg2, imm5)
	case opADDImm:
		c.setReg(inst.reg2, c.add(r2, imm5))
	case opSETF:
		var res uint32
		if c.condition(condition(inst.imm & 0xf)) {
			res = 1
		}
		c.setReg(inst.reg2, res)
	case opCMPImm:
		c.sub(r2, imm5)
	case opSHLImm:
		c.setReg(inst.reg2, c.shl(r2, inst.imm))
	case opSHRImm:
		c.setReg(inst.reg2, c.shr(r2, inst.imm))
	case opSARImm:
		c.setReg(inst.reg2, c.sar(r2, inst.imm))
	case opCLI:
		c.psw.id = false
	case opSEI:
		c.psw.id = true
	case opTRAP:
		return cycles, c.raiseException(exceptionTrap0+uint16(inst.imm), next)
	case opRETI:
		if c.psw.np {
			next = c.fepc
			c.psw.decodeFrom(c.fepsw)
		} else {
			next = c.eipc
			c.psw.decodeFrom(c.eipsw)
		}
	case opHALT:
		// Parked until an interrupt arrives.
		c.halted = true
		next = pc
	case opLDSR:
		c.writeSystemRegister(int(inst.imm), r2)
	case opSTSR:
		c.setReg(inst.reg2, c.readSystemRegister(int(inst.imm)))

	case opBcond:
		if c.condition(inst.cond) {
			next = pc + uint32(inst.disp)
			cycles = 3
		}

	case opMOVEA:
		c.setReg(inst.reg2, r1+imm16)
	case opADDI:
		c.setReg(inst.reg2, c.add(r1, imm16))
	case opJR:
		next = pc + uint32(inst.disp)
	case opJAL:
		c.setReg(31, next)
		next = pc + uint32(inst.disp)
	case opORI:
		c.setReg(inst.reg2, c.logical(r1|inst.imm))
	case opANDI:
		c.setReg(inst.reg2, c.logical(r1&inst.imm))
	case opXORI:
		c.setReg(inst.reg2, c.logical(r1^inst.imm))
	case opMOVHI:
		c.setReg(inst.reg2, r1+inst.imm<<16)

	case opLDB, opLDH, opLDW, opINB, opINH, opINW:
		if err := c.load(inst, r1+uint32(inst.disp)); err != nil {
			return cycles, err
		}
	case opSTB, opSTH, opSTW, opOUTB, opOUTH, opOUTW:
		if err := c.store(inst, r1+uint32(inst.disp), r2); err != nil {
			return cycles, err
		}
	case opCAXI:
		if err := c.compareExchange(inst, r1+uint32(inst.disp), r2); err != nil {
			return cycles, err
		}

	case opCMPF, opCVTWS, opCVTSW, opADDF, opSUBF, opMULF, opDIVF, opXB, opXH, opREV, opTRNC, opMPYHW:
		if code, ok := c.executeFloat(inst); ok {
			return cycles, c.raiseException(code, pc)
		}

	case opSCH0BSU, opSCH0BSD, opSCH1BSU, opSCH1BSD,
		opORBSU, opANDBSU, opXORBSU, opMOVBSU, opORNBSU, opANDNBSU, opXORNBSU, opNOTBSU:
		n, err := c.executeBitString(inst)
		cycles += n
		if err != nil {
			return cycles, err
		}

	default:
		return 0, &IllegalInstructionError{PC: pc, Opcode: uint16(inst.op)}
	}
	c.pc = next
	return cycles, nil
}

// logical sets the flags of OR, AND, XOR, NOT and their immediate forms.
func (c *V810) logical(res uint32) uint32 {
	c.psw.setZS(res)
	return res
}

// load implements LD.x (sign extending) and IN.x (zero extending).
func (c *V810) load(inst *instruction, address uint32) error {
	var value uint32
	switch inst.op {
	case opLDB, opINB:
		c.checkWatchpoint(address)
		v, err := c.bus.ReadByte(address)
		if err != nil {
			return err
		}
		value = uint32(v)
		if inst.op == opLDB {
			value = uint32(int32(int8(v)))
		}
	case opLDH, opINH:
		address &^= 1
		c.checkWatchpoint(address)
		v, err := c.bus.ReadHalfword(address)
		if err != nil {
			return err
		}
		value = uint32(v)
		if inst.op == opLDH {
			value = uint32(int32(int16(v)))
		}
	default:
		address &^= 3
		c.checkWatchpoint(address)
		v, err := c.bus.ReadWord(address)
		if err != nil {
			return err
		}
		value = v
	}
	c.setReg(inst.reg2, value)
	return nil
}

// store implements ST.x and OUT.x.
func (c *V810) store(inst *instruction, address, value uint32) error {
	switch inst.op {
	case opSTB, opOUTB:
		c.checkWatchpoint(address)
		return c.bus.WriteByte(address, byte(value))
	case opSTH, opOUTH:
		address &^= 1
		c.checkWatchpoint(address)
		return c.bus.WriteHalfword(address, uint16(value))
	}
	address &^= 3
	c.checkWatchpoint(address)
	return c.bus.WriteWord(address, value)
}

// compareExchange implements CAXI, r30 is stored when the word equals reg2.
func (c *V810) compareExchange(inst *instruction, address, value uint32) error {
	address &^= 3
	c.checkWatchpoint(address)
	current, err := c.bus.ReadWord(address)
	if err != nil {
		return err
	}
	c.sub(value, current)
	data := current
	if c.psw.z {
		data = c.reg(30)
	}
	if err := c.bus.WriteWord(address, data); err != nil {
		return err
	}
	c.setReg(inst.reg2, current)
	return nil
}
