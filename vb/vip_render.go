package vb

// Window (world) attributes live at 0x3D800, 32 bytes each, and are walked
// from window 31 down to window 0 for every drawing block.
// Reference:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#worlds
const (
	windowAttributesStart uint32 = 0x3d800
	windowAttributesSize         = 32
	windowCount                  = 32

	backgroundSegmentsStart uint32 = 0x20000
	backgroundSegmentSize          = 0x2000
	backgroundSegmentPixels        = 512

	objectAttributesStart uint32 = 0x3e000
	objectAttributesSize         = 8

	charSize = 16
)

type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

type WindowMode int

const (
	WindowNormal WindowMode = iota
	WindowLineShift
	WindowAffine
	WindowObj
)

// ObjGroup is one of the four sprite groups delimited by SPT0-SPT3.
type ObjGroup int

// window header bits
// bit    15  14  13-12 11-10 9-8 7   6    3-0
//        LON RON BGM   SCX   SCY OVR END  BGMAP_BASE
type window struct {
	base          int
	stop          bool
	overplane     bool
	bgHeight      int // log2 of the height in segments
	bgWidth       int // log2 of the width in segments
	mode          WindowMode
	rightOn       bool
	leftOn        bool
	x             int
	parallax      int
	y             int
	bgX           int
	bgParallax    int
	bgY           int
	width         int
	height        int
	paramBase     uint32
	overplaneCell uint16
}

func signExtend(value uint32, bits uint) int {
	shift := 32 - bits
	return int(int32(value<<shift) >> shift)
}

func (v *Vip) readWindow(index int) window {
	offset := windowAttributesStart + uint32(index*windowAttributesSize)
	header := v.vramHalfword(offset)
	h := func(i uint32) uint32 {
		return uint32(v.vramHalfword(offset + i*2))
	}
	return window{
		base:          int(header & 0x0f),
		stop:          header&0x40 != 0,
		overplane:     header&0x80 != 0,
		bgHeight:      int(header>>8) & 0x03,
		bgWidth:       int(header>>10) & 0x03,
		mode:          WindowMode(header>>12) & 0x03,
		rightOn:       header&0x4000 != 0,
		leftOn:        header&0x8000 != 0,
		x:             signExtend(h(1), 10),
		parallax:      signExtend(h(2), 10),
		y:             signExtend(h(3), 16),
		bgX:           signExtend(h(4), 13),
		bgParallax:    signExtend(h(5), 15),
		bgY:           signExtend(h(6), 13),
		width:         int(h(7)&0x1fff) + 1,
		height:        int(h(8)&0xffff) + 1,
		paramBase:     backgroundSegmentsStart + h(9)*2,
		overplaneCell: uint16(h(10)),
	}
}

func (w *window) eyeOn(eye Eye) bool {
	if eye == EyeLeft {
		return w.leftOn
	}
	return w.rightOn
}

// drawBlock renders one 8 line block into the framebuffers being drawn.
func (v *Vip) drawBlock(block int) {
	left, right := v.drawFramebuffers()
	v.clearBlock(left, block)
	v.clearBlock(right, block)

	group := ObjGroup(3)
	for i := windowCount - 1; i >= 0; i-- {
		w := v.readWindow(i)
		if w.stop {
			break
		}
		for _, eye := range []Eye{EyeLeft, EyeRight} {
			if !w.eyeOn(eye) {
				continue
			}
			fb := left
			if eye == EyeRight {
				fb = right
			}
			if w.mode == WindowObj {
				if group >= 0 {
					v.drawObjGroup(fb, block, eye, group)
				}
			} else {
				v.drawBackground(fb, block, eye, &w)
			}
		}
		if w.mode == WindowObj {
			group--
		}
	}
}

// clearBlock fills 8 lines of a framebuffer with the latched BKCOL.
func (v *Vip) clearBlock(fb uint32, block int) {
	fill := v.latchedBkcol * 0x55
	for x := uint32(0); x < ScreenWidth; x++ {
		offset := fb + x*64 + uint32(block)*2
		v.vram[offset] = fill
		v.vram[offset+1] = fill
	}
}

// Framebuffers are column major, 256 lines per column (64 bytes), 2 bits per
// pixel with the topmost pixel in the low bits.
func (v *Vip) writePixel(fb uint32, x, y int, code byte) {
	offset := fb + uint32(x)*64 + uint32(y)/4
	shift := uint(y%4) * 2
	v.vram[offset] = v.vram[offset]&^(3<<shift) | code<<shift
}

func (v *Vip) readPixel(fb uint32, x, y int) byte {
	offset := fb + uint32(x)*64 + uint32(y)/4
	shift := uint(y%4) * 2
	return (v.vram[offset] >> shift) & 3
}

// charAddress returns the VRAM address of a character, the four tables of
// 512 characters are interleaved with the framebuffers.
func charAddress(char uint16) uint32 {
	c := uint32(char & 0x07ff)
	return 0x6000 + (c/512)*0x8000 + (c%512)*charSize
}

// sampleCell samples a background cell or object, both share the layout
// bit    15-14   13    12    10-0
//        palette HFLIP VFLIP character
// and returns the 2 bit palette index with the palette number.
func (v *Vip) sampleCell(cell uint16, x, y int) (byte, int) {
	if cell&0x2000 != 0 {
		x = 7 - x
	}
	if cell&0x1000 != 0 {
		y = 7 - y
	}
	row := v.vramHalfword(charAddress(cell) + uint32(y)*2)
	return byte(row>>(uint(x)*2)) & 3, int(cell >> 14)
}

// sampleBackground samples a pixel of the background described by w.
func (v *Vip) sampleBackground(w *window, x, y int) (byte, int) {
	widthPixels := backgroundSegmentPixels << uint(w.bgWidth)
	heightPixels := backgroundSegmentPixels << uint(w.bgHeight)
	var cell uint16
	if w.overplane && (x < 0 || x >= widthPixels || y < 0 || y >= heightPixels) {
		cell = w.overplaneCell
	} else {
		x &= widthPixels - 1
		y &= heightPixels - 1
		segment := (w.base + (y/backgroundSegmentPixels)<<uint(w.bgWidth) + x/backgroundSegmentPixels) & 0x0f
		offset := backgroundSegmentsStart + uint32(segment)*backgroundSegmentSize +
			uint32((y%backgroundSegmentPixels)/8)*128 + uint32((x%backgroundSegmentPixels)/8)*2
		cell = v.vramHalfword(offset)
	}
	return v.sampleCell(cell, x&7, y&7)
}

func (v *Vip) drawBackground(fb uint32, block int, eye Eye, w *window) {
	windowX := w.x - w.parallax
	bgParallax := -w.bgParallax
	if eye == EyeRight {
		windowX = w.x + w.parallax
		bgParallax = w.bgParallax
	}
	for row := 0; row < 8; row++ {
		y := block*8 + row
		line := y - w.y
		if line < 0 || line >= w.height {
			continue
		}
		switch w.mode {
		case WindowNormal:
			v.drawBackgroundLine(fb, y, windowX, w, w.bgX+bgParallax, w.bgY+line)
		case WindowLineShift:
			entry := w.paramBase + uint32(line)*4
			if eye == EyeRight {
				entry += 2
			}
			shift := signExtend(uint32(v.vramHalfword(entry)), 13)
			v.drawBackgroundLine(fb, y, windowX, w, w.bgX+bgParallax+shift, w.bgY+line)
		case WindowAffine:
			v.drawAffineLine(fb, y, windowX, eye, w, line)
		}
	}
}

func (v *Vip) drawBackgroundLine(fb uint32, y, windowX int, w *window, bgX, bgY int) {
	for i := 0; i < w.width; i++ {
		x := windowX + i
		if x < 0 || x >= ScreenWidth {
			continue
		}
		index, palette := v.sampleBackground(w, bgX+i, bgY)
		if index != 0 {
			v.writePixel(fb, x, y, paletteCode(v.gplt[palette], index))
		}
	}
}

// drawAffineLine renders one line of an affine window. Every line has a 16
// byte parameter entry: MX (13.3), MP, MY (13.3), DX (7.9), DY (7.9).
func (v *Vip) drawAffineLine(fb uint32, y, windowX int, eye Eye, w *window, line int) {
	entry := w.paramBase + uint32(line)*16
	mx := int(int16(v.vramHalfword(entry)))
	mp := int(int16(v.vramHalfword(entry + 2)))
	my := int(int16(v.vramHalfword(entry + 4)))
	dx := int(int16(v.vramHalfword(entry + 6)))
	dy := int(int16(v.vramHalfword(entry + 8)))
	// The parallax is applied to the left image when negative and to the
	// right image otherwise.
	offset := 0
	if (eye == EyeLeft && mp < 0) || (eye == EyeRight && mp >= 0) {
		offset = mp
		if offset < 0 {
			offset = -offset
		}
	}
	for i := 0; i < w.width; i++ {
		x := windowX + i
		if x < 0 || x >= ScreenWidth {
			continue
		}
		// 13.3 << 6 and 7.9 share 9 fractional bits.
		bgX := (mx<<6 + dx*(i+offset)) >> 9
		bgY := (my<<6 + dy*(i+offset)) >> 9
		index, palette := v.sampleBackground(w, bgX, bgY)
		if index != 0 {
			v.writePixel(fb, x, y, paletteCode(v.gplt[palette], index))
		}
	}
}

// objGroupRange returns the object indices of a group, highest first.
func (v *Vip) objGroupRange(group ObjGroup) (int, int) {
	start := int(v.spt[group])
	end := 0
	if group > 0 {
		end = int(v.spt[group-1]) + 1
	}
	return start, end
}

// drawObjGroup renders the objects of a group, object attributes are
// bit    15-10 9-0
// +0            JX
// +2     JLON JRON  JP
// +4            JY (8 bits)
// +6     JCA (same layout as a background cell)
func (v *Vip) drawObjGroup(fb uint32, block int, eye Eye, group ObjGroup) {
	start, end := v.objGroupRange(group)
	top := block * 8
	for i := start; i >= end; i-- {
		offset := objectAttributesStart + uint32(i*objectAttributesSize)
		jx := signExtend(uint32(v.vramHalfword(offset)), 10)
		attr := v.vramHalfword(offset + 2)
		jy := int(v.vramHalfword(offset+4) & 0xff)
		jca := v.vramHalfword(offset + 6)
		if (eye == EyeLeft && attr&0x8000 == 0) || (eye == EyeRight && attr&0x4000 == 0) {
			continue
		}
		// JY wraps so objects can sit partially above the screen.
		if jy > ScreenHeight {
			jy -= 256
		}
		if jy+8 <= top || jy >= top+8 {
			continue
		}
		jp := signExtend(uint32(attr), 10)
		x := jx - jp
		if eye == EyeRight {
			x = jx + jp
		}
		for row := 0; row < 8; row++ {
			y := top + row
			if y < jy || y >= jy+8 {
				continue
			}
			for col := 0; col < 8; col++ {
				sx := x + col
				if sx < 0 || sx >= ScreenWidth {
					continue
				}
				index, palette := v.sampleCell(jca, col, y-jy)
				if index != 0 {
					v.writePixel(fb, sx, y, paletteCode(v.jplt[palette], index))
				}
			}
		}
	}
}

// paletteCode maps a non-zero palette index through a GPLT/JPLT register.
func paletteCode(palette byte, index byte) byte {
	return (palette >> (index * 2)) & 3
}
