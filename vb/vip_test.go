package vb

import (
	"image/color"
	"testing"
)

type testVideo struct {
	fb     *FrameBuffer
	frames int
}

func (v *testVideo) FrameBuffer() *FrameBuffer {
	return v.fb
}

func (v *testVideo) FrameReady(fb *FrameBuffer) {
	v.frames++
}

func TestVipFrameStart(t *testing.T) {
	v := NewVip()
	v.writeHalfword(regINTENB, intFrameStart|intDrawingEnd)
	if v.Cycles(DisplayEighthPeriod-1, nil) {
		t.Fatalf("interrupt before the frame started")
	}
	if !v.Cycles(1, nil) {
		t.Fatalf("no interrupt at the frame start")
	}
	want := intFrameStart | intGameStart | intDrawingEnd
	if got := v.readHalfword(regINTPND); got != want {
		t.Errorf("INTPND: got=0x%04x, want=0x%04x", got, want)
	}
	v.writeHalfword(regINTCLR, intFrameStart)
	if got := v.InterruptPending(); got != intGameStart|intDrawingEnd {
		t.Errorf("INTPND after INTCLR: got=0x%04x, want=0x%04x", got, intGameStart|intDrawingEnd)
	}
}

func TestVipDisplayReset(t *testing.T) {
	v := NewVip()
	v.writeHalfword(regINTENB, intFrameStart|intDrawingEnd)
	v.Cycles(DisplayEighthPeriod, nil)
	v.writeHalfword(regDPCTRL, dpReset)
	if got := v.InterruptPending(); got != intDrawingEnd {
		t.Errorf("INTPND: got=0x%04x, want=0x%04x", got, intDrawingEnd)
	}
	if got := v.InterruptEnable(); got != intDrawingEnd {
		t.Errorf("INTENB: got=0x%04x, want=0x%04x", got, intDrawingEnd)
	}
	if got := v.DisplayState(); got != DisplayFinished {
		t.Errorf("display state: got=%s, want=%s", got, DisplayFinished)
	}
}

func TestVipComposite(t *testing.T) {
	v := NewVip()
	v.writeHalfword(regDPCTRL, dpDisplay|dpSync)
	v.writeHalfword(regBRTA, 0x20)
	// The first game frame shows the 0 framebuffers, top left pixel is 1.
	v.writeByte(leftFramebuffer0, 0x01)
	video := &testVideo{fb: NewFrameBuffer(PixelFormatXRGB8888, false)}
	v.Cycles(DisplayEighthPeriod*2, video)
	if video.frames != 1 {
		t.Fatalf("frames: got=%d, want=1", video.frames)
	}
	img := video.fb.Image()
	if got, want := img.RGBAAt(0, 0), (color.RGBA{0x40, 0, 0, 0xff}); got != want {
		t.Errorf("pixel (0, 0): got=%v, want=%v", got, want)
	}
	if got, want := img.RGBAAt(1, 0), (color.RGBA{0, 0, 0, 0xff}); got != want {
		t.Errorf("pixel (1, 0): got=%v, want=%v", got, want)
	}
	if got := v.DisplayState(); got != DisplayLeftFramebuffer {
		t.Errorf("display state: got=%s, want=%s", got, DisplayLeftFramebuffer)
	}
}

func TestVipDrawing(t *testing.T) {
	v := NewVip()
	v.writeHalfword(regXPCTRL, xpEnable)
	v.writeHalfword(regBKCOL, 2)
	v.Cycles(DisplayEighthPeriod, nil)
	if got := v.DrawingState(); got != Drawing {
		t.Fatalf("drawing state: got=%s, want=%s", got, Drawing)
	}
	if got := v.readHalfword(regXPSTTS); got&xpFramebuffer1 == 0 {
		t.Errorf("XPSTTS: got=0x%04x, want the 1 framebuffers busy", got)
	}
	v.Cycles(drawingPeriod, nil)
	if got := v.DrawingState(); got != DrawingIdle {
		t.Fatalf("drawing state: got=%s, want=%s", got, DrawingIdle)
	}
	if v.InterruptPending()&intDrawingEnd == 0 {
		t.Errorf("INTPND: got=0x%04x, want XPEND", v.InterruptPending())
	}
	// The first block is cleared with the colour latched before drawing began.
	if got := v.readPixel(leftFramebuffer1, 0, 0); got != 0 {
		t.Errorf("block 0 pixel: got=%d, want=0", got)
	}
	if got := v.readPixel(rightFramebuffer1, 100, 8); got != 2 {
		t.Errorf("block 1 pixel: got=%d, want=2", got)
	}
}

func TestVipCharacterMirror(t *testing.T) {
	v := NewVip()
	v.writeHalfword(0x78000+0x2000, 0xabcd)
	if got := v.readHalfword(0x0e000); got != 0xabcd {
		t.Errorf("character table 1: got=0x%04x, want=0xabcd", got)
	}
	if got := v.readHalfword(regVER); got != vipVersion {
		t.Errorf("VER: got=%d, want=%d", got, vipVersion)
	}
}

// Window header bits.
const (
	testLeftOn    = 0x8000
	testRightOn   = 0x4000
	testBothEyes  = testLeftOn | testRightOn
	testLineShift = 0x1000
	testAffine    = 0x2000
	testObj       = 0x3000
	testOverplane = 0x0080
	testEnd       = 0x0040
)

func setHalfwords(v *Vip, address uint32, data ...uint16) {
	for i, d := range data {
		v.setVramHalfword(address+uint32(i*2), d)
	}
}

// setWindow writes the header then GX, GP, GY, MX, MP, MY, W, H, PARAM_BASE
// and OVERPLANE_CHAR.
func setWindow(v *Vip, index int, attrs ...uint16) {
	setHalfwords(v, windowAttributesStart+uint32(index*windowAttributesSize), attrs...)
}

// setChar fills every row of a character with row.
func setChar(v *Vip, char uint16, row uint16) {
	for y := uint32(0); y < 8; y++ {
		v.setVramHalfword(charAddress(char)+y*2, row)
	}
}

// setCell writes a cell of background segment 0.
func setCell(v *Vip, x, y int, cell uint16) {
	v.setVramHalfword(backgroundSegmentsStart+uint32(y*128+x*2), cell)
}

func setObject(v *Vip, index int, jx, attr, jy, jca uint16) {
	setHalfwords(v, objectAttributesStart+uint32(index*objectAttributesSize), jx, attr, jy, jca)
}

// newTestRenderer returns a VIP with identity palettes, character 1 solid
// index 1 and character 2 solid index 2.
func newTestRenderer() *Vip {
	v := NewVip()
	for i := uint32(0); i < 4; i++ {
		v.writeHalfword(regGPLT0+i*2, 0xe4)
		v.writeHalfword(regJPLT0+i*2, 0xe4)
	}
	setChar(v, 1, 0x5555)
	setChar(v, 2, 0xaaaa)
	return v
}

type pixelCase struct {
	fb   uint32
	x, y int
	want byte
}

func checkPixels(t *testing.T, v *Vip, cases []pixelCase) {
	t.Helper()
	for _, c := range cases {
		if got := v.readPixel(c.fb, c.x, c.y); got != c.want {
			t.Errorf("fb=0x%05x (%d, %d): got=%d, want=%d", c.fb, c.x, c.y, got, c.want)
		}
	}
}

func TestVipNormalWindow(t *testing.T) {
	v := newTestRenderer()
	setCell(v, 0, 0, 1)
	// GX 10, GP 2, MP 1, 8x8.
	setWindow(v, 31, testBothEyes, 10, 2, 0, 0, 1, 0, 7, 7)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		// Left at 8..15 sampling the background from -1.
		{leftFramebuffer0, 7, 0, 0},
		{leftFramebuffer0, 8, 0, 0},
		{leftFramebuffer0, 9, 0, 1},
		{leftFramebuffer0, 15, 7, 1},
		{leftFramebuffer0, 16, 0, 0},
		// Right at 12..19 sampling the background from 1.
		{rightFramebuffer0, 11, 0, 0},
		{rightFramebuffer0, 12, 0, 1},
		{rightFramebuffer0, 18, 7, 1},
		{rightFramebuffer0, 19, 0, 0},
	})
	// The window is 8 lines high.
	v.drawBlock(1)
	checkPixels(t, v, []pixelCase{{leftFramebuffer0, 9, 8, 0}})
}

func TestVipLineShiftWindow(t *testing.T) {
	v := newTestRenderer()
	setCell(v, 0, 0, 1)
	// Parameters at 0x22000.
	setWindow(v, 31, testBothEyes|testLineShift, 0, 0, 0, 0, 0, 0, 7, 7, 0x1000)
	setHalfwords(v, 0x22000,
		0, 4, // line 0: left, right
		2, 0, // line 1
	)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 0, 0, 1},
		{leftFramebuffer0, 7, 0, 1},
		{rightFramebuffer0, 3, 0, 1},
		{rightFramebuffer0, 4, 0, 0},
		{leftFramebuffer0, 5, 1, 1},
		{leftFramebuffer0, 6, 1, 0},
		{rightFramebuffer0, 7, 1, 1},
	})
}

func TestVipAffineWindow(t *testing.T) {
	v := newTestRenderer()
	setCell(v, 0, 0, 1)
	setWindow(v, 31, testBothEyes|testAffine, 0, 0, 0, 0, 0, 0, 31, 7, 0x1000)
	setHalfwords(v, 0x22000,
		0, 0, 0, 0x200, 0, 0, 0, 0, // line 0: DX 1.0
		0, 0, 0, 0x100, 0, 0, 0, 0, // line 1: DX 0.5
		0, 2, 0, 0x200, 0, 0, 0, 0, // line 2: DX 1.0, MP 2
	)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 7, 0, 1},
		{leftFramebuffer0, 8, 0, 0},
		{leftFramebuffer0, 15, 1, 1},
		{leftFramebuffer0, 16, 1, 0},
		// A positive MP only moves the right image.
		{leftFramebuffer0, 7, 2, 1},
		{leftFramebuffer0, 8, 2, 0},
		{rightFramebuffer0, 5, 2, 1},
		{rightFramebuffer0, 6, 2, 0},
	})
}

func TestVipOverplane(t *testing.T) {
	for _, c := range []struct {
		header uint16
		want   byte
	}{
		{testBothEyes, 0},
		{testBothEyes | testOverplane, 2},
	} {
		v := newTestRenderer()
		setCell(v, 0, 0, 1)
		// MX -8, so the first 8 pixels are left of the background.
		setWindow(v, 31, c.header, 0, 0, 0, 0xfff8, 0, 0, 15, 7, 0, 2)
		v.drawBlock(0)
		if got := v.readPixel(leftFramebuffer0, 0, 0); got != c.want {
			t.Errorf("header=0x%04x (0, 0): got=%d, want=%d", c.header, got, c.want)
		}
		if got := v.readPixel(leftFramebuffer0, 8, 0); got != 1 {
			t.Errorf("header=0x%04x (8, 0): got=%d, want=1", c.header, got)
		}
	}
}

func TestVipFlip(t *testing.T) {
	v := newTestRenderer()
	// Character 3 only has its top left pixel set.
	v.setVramHalfword(charAddress(3), 0x0003)
	setCell(v, 0, 0, 3)
	setCell(v, 1, 0, 0x2000|3) // HFLIP
	setCell(v, 2, 0, 0x1000|3) // VFLIP
	setCell(v, 3, 0, 0x3000|3)
	setWindow(v, 31, testLeftOn, 0, 0, 0, 0, 0, 0, 31, 7)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 0, 0, 3},
		{leftFramebuffer0, 8, 0, 0},
		{leftFramebuffer0, 15, 0, 3},
		{leftFramebuffer0, 16, 0, 0},
		{leftFramebuffer0, 16, 7, 3},
		{leftFramebuffer0, 31, 7, 3},
		{rightFramebuffer0, 0, 0, 0},
	})
}

func TestVipPalettes(t *testing.T) {
	v := newTestRenderer()
	v.writeHalfword(regGPLT0+2, 0x08) // index 1 -> 2
	v.writeHalfword(regJPLT0+4, 0x0c) // index 1 -> 3
	setCell(v, 0, 0, 0x4000|1)        // GPLT1
	setWindow(v, 31, testLeftOn, 0, 0, 0, 0, 0, 0, 7, 7)
	setWindow(v, 30, testLeftOn|testObj)
	setWindow(v, 29, testEnd)
	v.writeHalfword(regSPT3, 1)
	setObject(v, 1, 16, testLeftOn, 0, 0x8000|1) // JPLT2
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 0, 0, 2},
		{leftFramebuffer0, 16, 0, 3},
	})
}

func TestVipObjGroups(t *testing.T) {
	v := newTestRenderer()
	// Group 3 is object 1, groups 2 and 1 are empty, group 0 is object 0.
	v.writeHalfword(regSPT3, 1)
	for i := 0; i < 4; i++ {
		setWindow(v, 31-i, testBothEyes|testObj)
	}
	setWindow(v, 27, testEnd)
	setObject(v, 1, 0, testBothEyes, 0, 1)
	setObject(v, 0, 4, testLeftOn, 0, 2)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 3, 0, 1},
		{leftFramebuffer0, 4, 0, 2},
		{leftFramebuffer0, 11, 7, 2},
		{leftFramebuffer0, 12, 0, 0},
		{rightFramebuffer0, 4, 0, 1},
		{rightFramebuffer0, 7, 7, 1},
		{rightFramebuffer0, 8, 0, 0},
	})
}

func TestVipObjOrder(t *testing.T) {
	v := newTestRenderer()
	// Only group 0 has objects, 1 then 0.
	for i := uint32(0); i < 4; i++ {
		v.writeHalfword(regSPT0+i*2, 1)
	}
	for i := 0; i < 4; i++ {
		setWindow(v, 31-i, testBothEyes|testObj)
	}
	setWindow(v, 27, testEnd)
	setObject(v, 1, 0, testBothEyes, 0, 1)
	setObject(v, 0, 2, testBothEyes|1, 0, 2) // JP 1
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 0, 0, 1},
		{leftFramebuffer0, 1, 0, 2},
		{leftFramebuffer0, 8, 0, 2},
		{leftFramebuffer0, 9, 0, 0},
		{rightFramebuffer0, 2, 0, 1},
		{rightFramebuffer0, 3, 0, 2},
		{rightFramebuffer0, 10, 0, 2},
	})
}

func TestVipWindowStop(t *testing.T) {
	v := newTestRenderer()
	setCell(v, 0, 0, 1)
	setWindow(v, 31, 0, 100, 0, 0, 0, 0, 0, 7, 7) // no eye
	setWindow(v, 30, testBothEyes, 20, 0, 0, 0, 0, 0, 7, 7)
	setWindow(v, 29, testBothEyes|testEnd, 40, 0, 0, 0, 0, 0, 7, 7)
	setWindow(v, 28, testBothEyes, 0, 0, 0, 0, 0, 0, 7, 7)
	v.drawBlock(0)
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer0, 100, 0, 0},
		{leftFramebuffer0, 20, 0, 1},
		{rightFramebuffer0, 27, 7, 1},
		{leftFramebuffer0, 40, 0, 0},
		{leftFramebuffer0, 0, 0, 0},
	})
}

func TestVipBackgroundColourLatch(t *testing.T) {
	v := NewVip()
	v.writeHalfword(regXPCTRL, xpEnable)
	v.writeHalfword(regBKCOL, 2)
	v.Cycles(DisplayEighthPeriod, nil)
	// Past the end of block 0.
	v.Cycles(drawingPeriod/DrawingBlockCount, nil)
	v.writeHalfword(regBKCOL, 3)
	v.Cycles(drawingPeriod, nil)
	if got := v.DrawingState(); got != DrawingIdle {
		t.Fatalf("drawing state: got=%s, want=%s", got, DrawingIdle)
	}
	checkPixels(t, v, []pixelCase{
		{leftFramebuffer1, 0, 0, 0},
		{leftFramebuffer1, 0, 8, 2},
		{leftFramebuffer1, 0, 16, 3},
		{rightFramebuffer1, 383, 223, 3},
	})
}
