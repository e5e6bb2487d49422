package vb

// Bit string instructions take their operands from fixed registers.
const (
	bsDestOffset  = 26
	bsSrcOffset   = 27
	bsLength      = 28
	bsDestAddress = 29 // searches keep the number of skipped bits here
	bsSrcAddress  = 30
)

// executeBitString runs the opcode 0x1F group and returns the cycles spent on
// top of the instruction's base cost.
func (c *V810) executeBitString(inst *instruction) (int, error) {
	switch inst.op {
	case opSCH0BSU:
		return c.searchBitString(0, true)
	case opSCH0BSD:
		return c.searchBitString(0, false)
	case opSCH1BSU:
		return c.searchBitString(1, true)
	case opSCH1BSD:
		return c.searchBitString(1, false)
	}
	return c.transferBitString(inst.op)
}

// searchBitString looks for the first bit equal to want. Z is cleared when
// one is found and the registers are left pointing at it.
func (c *V810) searchBitString(want uint32, up bool) (int, error) {
	address := c.reg(bsSrcAddress) &^ 3
	offset := c.reg(bsSrcOffset) & 31
	length := c.reg(bsLength)
	skipped := c.reg(bsDestAddress)
	cycles := 0
	found := false
	loaded := false
	var word uint32
	for length > 0 {
		if !loaded {
			c.checkWatchpoint(address)
			w, err := c.bus.ReadWord(address)
			if err != nil {
				return cycles, err
			}
			word = w
			loaded = true
			cycles += 4
		}
		if (word>>offset)&1 == want {
			found = true
			break
		}
		skipped++
		length--
		cycles++
		if up {
			offset = (offset + 1) & 31
			if offset == 0 {
				address += 4
				loaded = false
			}
		} else {
			offset = (offset - 1) & 31
			if offset == 31 {
				address -= 4
				loaded = false
			}
		}
	}
	c.setReg(bsSrcAddress, address)
	c.setReg(bsSrcOffset, offset)
	c.setReg(bsLength, length)
	c.setReg(bsDestAddress, skipped)
	c.psw.z = !found
	return cycles, nil
}

// bitOperation combines a destination bit with a source bit.
func bitOperation(kind op, dst, src uint32) uint32 {
	switch kind {
	case opORBSU:
		return dst | src
	case opANDBSU:
		return dst & src
	case opXORBSU:
		return dst ^ src
	case opMOVBSU:
		return src
	case opORNBSU:
		return dst | (src ^ 1)
	case opANDNBSU:
		return dst & (src ^ 1)
	case opXORNBSU:
		return dst ^ (src ^ 1)
	}
	// NOTBSU
	return src ^ 1
}

// transferBitString copies length bits upwards from the source to the
// destination, combining them as kind says.
func (c *V810) transferBitString(kind op) (int, error) {
	dstAddress := c.reg(bsDestAddress) &^ 3
	srcAddress := c.reg(bsSrcAddress) &^ 3
	dstOffset := c.reg(bsDestOffset) & 31
	srcOffset := c.reg(bsSrcOffset) & 31
	length := c.reg(bsLength)
	cycles := 0
	var src, dst uint32
	srcLoaded, dstLoaded := false, false

	flush := func() error {
		if !dstLoaded {
			return nil
		}
		dstLoaded = false
		c.checkWatchpoint(dstAddress)
		cycles += 4
		return c.bus.WriteWord(dstAddress, dst)
	}
	for ; length > 0; length-- {
		if !srcLoaded {
			c.checkWatchpoint(srcAddress)
			w, err := c.bus.ReadWord(srcAddress)
			if err != nil {
				return cycles, err
			}
			src, srcLoaded = w, true
			cycles += 4
		}
		if !dstLoaded {
			c.checkWatchpoint(dstAddress)
			w, err := c.bus.ReadWord(dstAddress)
			if err != nil {
				return cycles, err
			}
			dst, dstLoaded = w, true
			cycles += 4
		}
		bit := bitOperation(kind, (dst>>dstOffset)&1, (src>>srcOffset)&1)
		dst = dst&^(1<<dstOffset) | bit<<dstOffset
		cycles++

		srcOffset = (srcOffset + 1) & 31
		if srcOffset == 0 {
			srcAddress += 4
			srcLoaded = false
		}
		dstOffset = (dstOffset + 1) & 31
		if dstOffset == 0 {
			if err := flush(); err != nil {
				return cycles, err
			}
			dstAddress += 4
		}
	}
	if err := flush(); err != nil {
		return cycles, err
	}
	c.setReg(bsDestOffset, dstOffset)
	c.setReg(bsSrcOffset, srcOffset)
	c.setReg(bsLength, 0)
	c.setReg(bsDestAddress, dstAddress)
	c.setReg(bsSrcAddress, srcAddress)
	return cycles, nil
}
