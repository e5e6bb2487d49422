package vb

import (
	"math"
	"math/bits"
)

// smallestNormal is the smallest positive normalized single.
const smallestNormal = 0x1p-126

// isReservedOperand reports NaN, infinity and denormals, the FPU refuses
// to work on them.
func isReservedOperand(value uint32) bool {
	exponent := (value >> 23) & 0xff
	return exponent == 0xff || (exponent == 0 && value&0x7fffff != 0)
}

// setFloatFlags sets the flags every floating point result produces.
func (c *V810) setFloatFlags(res float32) {
	c.psw.z = res == 0
	c.psw.s = math.Signbit(float64(res)) && res != 0
	c.psw.cy = c.psw.s
	c.psw.ov = false
}

// executeFloat runs the format VII group, it returns an exception code when
// the operation traps.
func (c *V810) executeFloat(inst *instruction) (uint16, bool) {
	r1 := c.reg(inst.reg1)
	r2 := c.reg(inst.reg2)
	switch inst.op {
	case opCMPF, opADDF, opSUBF, opMULF, opDIVF:
		if isReservedOperand(r1) || isReservedOperand(r2) {
			return exceptionFPReservedOperand, true
		}
		return c.arithmeticFloat(inst)
	case opCVTWS:
		res := float32(int32(r1))
		if int64(res) != int64(int32(r1)) {
			c.psw.fpr = true
		}
		c.setFloatFlags(res)
		c.setRegFloat(inst.reg2, res)
	case opCVTSW, opTRNC:
		if isReservedOperand(r1) {
			return exceptionFPReservedOperand, true
		}
		value := float64(c.regFloat(inst.reg1))
		rounded := math.RoundToEven(value)
		if inst.op == opTRNC {
			rounded = math.Trunc(value)
		}
		if rounded > math.MaxInt32 || rounded < math.MinInt32 {
			c.psw.fiv = true
			return exceptionFPInvalid, true
		}
		if rounded != value {
			c.psw.fpr = true
		}
		res := uint32(int32(rounded))
		c.psw.setZS(res)
		c.setReg(inst.reg2, res)
	case opXB:
		c.setReg(inst.reg2, r2&0xffff0000|(r2>>8)&0xff|(r2&0xff)<<8)
	case opXH:
		c.setReg(inst.reg2, r2<<16|r2>>16)
	case opREV:
		c.setReg(inst.reg2, bits.Reverse32(r1))
	case opMPYHW:
		c.setReg(inst.reg2, uint32(int32(r2)*int32(signExtend(r1&0x1ffff, 17))))
	}
	return 0, false
}

func (c *V810) arithmeticFloat(inst *instruction) (uint16, bool) {
	lhs := c.regFloat(inst.reg2)
	rhs := c.regFloat(inst.reg1)
	var res float64
	switch inst.op {
	case opCMPF:
		c.setFloatFlags(lhs - rhs)
		if lhs == rhs {
			c.psw.z, c.psw.s, c.psw.cy = true, false, false
		}
		return 0, false
	case opADDF:
		res = float64(lhs) + float64(rhs)
	case opSUBF:
		res = float64(lhs) - float64(rhs)
	case opMULF:
		res = float64(lhs) * float64(rhs)
	case opDIVF:
		if rhs == 0 {
			if lhs == 0 {
				c.psw.fiv = true
				return exceptionFPInvalid, true
			}
			c.psw.fzd = true
			return exceptionFPZeroDivision, true
		}
		res = float64(lhs) / float64(rhs)
	}
	if math.Abs(res) > math.MaxFloat32 {
		c.psw.fov = true
		return exceptionFPOverflow, true
	}
	f := float32(res)
	if float64(f) != res {
		c.psw.fpr = true
	}
	if f != 0 && math.Abs(float64(f)) < smallestNormal {
		// Denormals are flushed to zero.
		c.psw.fud = true
		f = 0
	}
	c.setFloatFlags(f)
	c.setRegFloat(inst.reg2, f)
	return 0, false
}
