package vb

import "github.com/golang/glog"

// VIP memory map (address & 0x7ffff)
// 0x00000 - 0x05FFF	Left framebuffer 0
// 0x06000 - 0x07FFF	Character table 0 (chars 0-511)
// 0x08000 - 0x0DFFF	Left framebuffer 1
// 0x0E000 - 0x0FFFF	Character table 1 (chars 512-1023)
// 0x10000 - 0x15FFF	Right framebuffer 0
// 0x16000 - 0x17FFF	Character table 2 (chars 1024-1535)
// 0x18000 - 0x1DFFF	Right framebuffer 1
// 0x1E000 - 0x1FFFF	Character table 3 (chars 1536-2047)
// 0x20000 - 0x3D7FF	Background segments and parameter tables
// 0x3D800 - 0x3DBFF	Window attributes
// 0x3DC00 - 0x3DFFF	Column table
// 0x3E000 - 0x3FFFF	Object attributes
// 0x40000 - 0x5FFFF	Registers (0x5F800 - 0x5F87F, mirrored)
// 0x78000 - 0x7FFFF	Character tables 0-3, linear
const (
	vipRegistersStart = 0x40000
	vipRegistersEnd   = 0x5ffff
	charMirrorStart   = 0x78000
)

// Register offsets.
const (
	regINTPND = 0x5f800
	regINTENB = 0x5f802
	regINTCLR = 0x5f804
	regDPSTTS = 0x5f820
	regDPCTRL = 0x5f822
	regBRTA   = 0x5f824
	regBRTB   = 0x5f826
	regBRTC   = 0x5f828
	regREST   = 0x5f82a
	regFRMCYC = 0x5f82e
	regCTA    = 0x5f830
	regXPSTTS = 0x5f840
	regXPCTRL = 0x5f842
	regVER    = 0x5f844
	regSPT0   = 0x5f848
	regSPT3   = 0x5f84e
	regGPLT0  = 0x5f860
	regGPLT3  = 0x5f866
	regJPLT0  = 0x5f868
	regJPLT3  = 0x5f86e
	regBKCOL  = 0x5f870
)

const vipVersion = 2

// DPSTTS / DPCTRL bits
const (
	dpReset      = 1 << 0
	dpDisplay    = 1 << 1
	dpLeft0Busy  = 1 << 2
	dpRight0Busy = 1 << 3
	dpLeft1Busy  = 1 << 4
	dpRight1Busy = 1 << 5
	dpScanReady  = 1 << 6
	dpFrameClock = 1 << 7
	dpRefresh    = 1 << 8
	dpSync       = 1 << 9
	dpColumnLock = 1 << 10
)

// XPSTTS / XPCTRL bits
const (
	xpReset        = 1 << 0
	xpEnable       = 1 << 1
	xpFramebuffer0 = 1 << 2
	xpFramebuffer1 = 1 << 3
	xpBlockShift   = 8
	xpBlockMask    = 0x1f << xpBlockShift
	xpBlockHitOut  = 1 << 15
)

// charMirrorAddress maps the linear character window onto the four tables
// interleaved with the framebuffers.
func charMirrorAddress(address uint32) uint32 {
	offset := address - charMirrorStart
	return 0x6000 + (offset/0x2000)*0x8000 + offset%0x2000
}

func vipRegisterAddress(address uint32) uint32 {
	return 0x5f800 | address&0x7e
}

func (v *Vip) readByte(address uint32) byte {
	switch {
	case address < vramSize:
		return v.vram[address]
	case address <= vipRegistersEnd:
		data := v.readRegister(vipRegisterAddress(address))
		if address&1 != 0 {
			return byte(data >> 8)
		}
		return byte(data)
	case address >= charMirrorStart:
		return v.vram[charMirrorAddress(address)]
	}
	glog.V(1).Infof("Unmapped VIP read: address=0x%05x\n", address)
	return 0
}

func (v *Vip) writeByte(address uint32, data byte) {
	switch {
	case address < vramSize:
		v.vram[address] = data
	case address <= vipRegistersEnd:
		// The registers are 16 bits wide, a byte write stores the low byte.
		v.writeRegister(vipRegisterAddress(address), uint16(data))
	case address >= charMirrorStart:
		v.vram[charMirrorAddress(address)] = data
	default:
		glog.V(1).Infof("Unmapped VIP write: address=0x%05x, data=0x%02x\n", address, data)
	}
}

func (v *Vip) readHalfword(address uint32) uint16 {
	address &^= 1
	switch {
	case address < vramSize:
		return v.vramHalfword(address)
	case address <= vipRegistersEnd:
		return v.readRegister(vipRegisterAddress(address))
	case address >= charMirrorStart:
		return v.vramHalfword(charMirrorAddress(address))
	}
	glog.V(1).Infof("Unmapped VIP read: address=0x%05x\n", address)
	return 0
}

func (v *Vip) writeHalfword(address uint32, data uint16) {
	address &^= 1
	switch {
	case address < vramSize:
		v.setVramHalfword(address, data)
	case address <= vipRegistersEnd:
		v.writeRegister(vipRegisterAddress(address), data)
	case address >= charMirrorStart:
		v.setVramHalfword(charMirrorAddress(address), data)
	default:
		glog.V(1).Infof("Unmapped VIP write: address=0x%05x, data=0x%04x\n", address, data)
	}
}

func (v *Vip) vramHalfword(address uint32) uint16 {
	address = address & (vramSize - 1) &^ 1
	return uint16(v.vram[address]) | uint16(v.vram[address+1])<<8
}

func (v *Vip) setVramHalfword(address uint32, data uint16) {
	v.vram[address] = byte(data)
	v.vram[address+1] = byte(data >> 8)
}

func (v *Vip) readRegister(address uint32) uint16 {
	switch {
	case address == regINTPND:
		return v.interruptPending
	case address == regINTENB:
		return v.interruptEnable
	case address == regDPSTTS:
		return v.readDisplayStatus()
	case address == regBRTA:
		return uint16(v.brta)
	case address == regBRTB:
		return uint16(v.brtb)
	case address == regBRTC:
		return uint16(v.brtc)
	case address == regREST:
		return uint16(v.rest)
	case address == regCTA:
		// Column table pointers are not emulated, they read back as their
		// reset values.
		return 0xfefe
	case address == regXPSTTS:
		return v.readDrawingStatus()
	case address == regVER:
		return vipVersion
	case regSPT0 <= address && address <= regSPT3:
		return v.spt[(address-regSPT0)/2]
	case regGPLT0 <= address && address <= regGPLT3:
		return uint16(v.gplt[(address-regGPLT0)/2])
	case regJPLT0 <= address && address <= regJPLT3:
		return uint16(v.jplt[(address-regJPLT0)/2])
	case address == regBKCOL:
		return uint16(v.bkcol)
	}
	glog.V(1).Infof("Unimplemented VIP register read: address=0x%05x\n", address)
	return 0
}

func (v *Vip) writeRegister(address uint32, data uint16) {
	switch {
	case address == regINTENB:
		v.interruptEnable = data & intMask
	case address == regINTCLR:
		v.interruptPending &^= data
	case address == regDPCTRL:
		v.writeDisplayControl(data)
	case address == regBRTA:
		v.brta = byte(data)
	case address == regBRTB:
		v.brtb = byte(data)
	case address == regBRTC:
		v.brtc = byte(data)
	case address == regREST:
		v.rest = byte(data)
	case address == regFRMCYC:
		v.frmcyc = byte(data & 0x0f)
	case address == regXPCTRL:
		v.writeDrawingControl(data)
	case regSPT0 <= address && address <= regSPT3:
		v.spt[(address-regSPT0)/2] = data & 0x03ff
	case regGPLT0 <= address && address <= regGPLT3:
		v.gplt[(address-regGPLT0)/2] = byte(data) & 0xfc
	case regJPLT0 <= address && address <= regJPLT3:
		v.jplt[(address-regJPLT0)/2] = byte(data) & 0xfc
	case address == regBKCOL:
		v.bkcol = byte(data) & 0x03
	default:
		glog.V(1).Infof("Unimplemented VIP register write: address=0x%05x, data=0x%04x\n", address, data)
	}
}

func (v *Vip) readDisplayStatus() uint16 {
	var res uint16 = dpScanReady
	if v.displayEnable {
		res |= dpDisplay
	}
	switch v.displayState {
	case DisplayLeftFramebuffer:
		if v.displayFirstFramebuffers {
			res |= dpLeft0Busy
		} else {
			res |= dpLeft1Busy
		}
	case DisplayRightFramebuffer:
		if v.displayFirstFramebuffers {
			res |= dpRight0Busy
		} else {
			res |= dpRight1Busy
		}
	}
	if v.displayEighth < displayEighths/2 {
		res |= dpFrameClock
	}
	if v.refreshEnable {
		res |= dpRefresh
	}
	if v.syncEnable {
		res |= dpSync
	}
	if v.columnLock {
		res |= dpColumnLock
	}
	return res
}

func (v *Vip) writeDisplayControl(data uint16) {
	if data&dpReset != 0 {
		v.displayReset()
	}
	v.displayEnable = data&dpDisplay != 0
	v.refreshEnable = data&dpRefresh != 0
	v.syncEnable = data&dpSync != 0
	v.columnLock = data&dpColumnLock != 0
}

func (v *Vip) readDrawingStatus() uint16 {
	var res uint16
	if v.drawingEnable {
		res |= xpEnable
	}
	if v.drawingState == Drawing {
		if v.displayFirstFramebuffers {
			res |= xpFramebuffer1
		} else {
			res |= xpFramebuffer0
		}
	}
	res |= uint16(v.drawingBlock) << xpBlockShift & xpBlockMask
	if v.blockHitOut {
		res |= xpBlockHitOut
	}
	return res
}

func (v *Vip) writeDrawingControl(data uint16) {
	if data&xpReset != 0 {
		v.drawingReset()
	}
	v.drawingEnable = data&xpEnable != 0
	v.blockCompare = int(data&xpBlockMask) >> xpBlockShift
}
