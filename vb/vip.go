package vb

import "fmt"

// Vip stands for Video Image Processor, it draws the left/right images into
// two pairs of framebuffers and scans the pair drawn during the previous game
// frame out to the displays.
//
// Timing is driven by the master clock (20MHz). A display frame is 20ms long
// and split into eighths, drawing runs in 28 blocks of 8 lines each spread
// over two eighths.
// References:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#vip
//   https://www.virtual-boy.com/documents/virtual-boy-specifications/
const (
	ScreenWidth  = 384
	ScreenHeight = 224

	DisplayEighthPeriod = 50000 // 2.5ms
	displayEighths      = 8

	drawingPeriod     = DisplayEighthPeriod * 2
	DrawingBlockCount = ScreenHeight / 8 // 28
)

const vramSize = 0x40000

// Framebuffer offsets in VRAM.
const (
	leftFramebuffer0  uint32 = 0x00000
	leftFramebuffer1  uint32 = 0x08000
	rightFramebuffer0 uint32 = 0x10000
	rightFramebuffer1 uint32 = 0x18000
	framebufferSize          = 0x6000
)

// Interrupt bits shared by INTPND, INTENB and INTCLR.
const (
	intLeftFramebufferEnd  uint16 = 1 << 1
	intRightFramebufferEnd uint16 = 1 << 2
	intGameStart           uint16 = 1 << 3
	intFrameStart          uint16 = 1 << 4
	intBlockHit            uint16 = 1 << 13
	intDrawingEnd          uint16 = 1 << 14

	intDisplayMask = intLeftFramebufferEnd | intRightFramebufferEnd | intGameStart | intFrameStart
	intDrawingMask = intBlockHit | intDrawingEnd
	intMask        = intDisplayMask | intDrawingMask
)

type DisplayState int

const (
	DisplayIdle DisplayState = iota
	DisplayLeftFramebuffer
	DisplayRightFramebuffer
	DisplayFinished
)

func (s DisplayState) String() string {
	switch s {
	case DisplayIdle:
		return "Idle"
	case DisplayLeftFramebuffer:
		return "LeftFramebuffer"
	case DisplayRightFramebuffer:
		return "RightFramebuffer"
	case DisplayFinished:
		return "Finished"
	}
	return fmt.Sprintf("DisplayState(%d)", int(s))
}

type DrawingState int

const (
	DrawingIdle DrawingState = iota
	Drawing
)

func (s DrawingState) String() string {
	if s == Drawing {
		return "Drawing"
	}
	return "Idle"
}

type Vip struct {
	vram [vramSize]byte

	displayState DisplayState
	drawingState DrawingState

	interruptPending uint16
	interruptEnable  uint16

	// DPCTRL
	displayEnable bool
	refreshEnable bool
	syncEnable    bool
	columnLock    bool

	// XPCTRL
	drawingEnable bool
	blockCompare  int
	blockHitOut   bool

	brta byte
	brtb byte
	brtc byte
	rest byte

	frmcyc byte
	spt    [4]uint16
	gplt   [4]byte
	jplt   [4]byte
	bkcol  byte

	// The background colour used to clear a block is the one latched when the
	// previous block finished, not the live register.
	latchedBkcol byte

	displayCounter int // cycles into the current eighth
	displayEighth  int
	frameCounter   int // display frames since the last game frame

	// When set the 0 framebuffers are shown and the 1 framebuffers are drawn.
	displayFirstFramebuffers bool

	drawingCounter int // cycles since drawing started
	drawingBlock   int
}

// NewVip creates a VIP, the first display eighth event (frame start) fires
// after one eighth period.
func NewVip() *Vip {
	return &Vip{
		displayState:  DisplayFinished,
		displayEighth: displayEighths - 1,
	}
}

func (v *Vip) String() string {
	return fmt.Sprintf("display=%s eighth=%d drawing=%s block=%d intpnd=0x%04x intenb=0x%04x",
		v.displayState, v.displayEighth, v.drawingState, v.drawingBlock, v.interruptPending, v.interruptEnable)
}

func (v *Vip) DisplayState() DisplayState {
	return v.displayState
}

func (v *Vip) DrawingState() DrawingState {
	return v.drawingState
}

// InterruptPending returns INTPND.
func (v *Vip) InterruptPending() uint16 {
	return v.interruptPending
}

// InterruptEnable returns INTENB.
func (v *Vip) InterruptEnable() uint16 {
	return v.interruptEnable
}

// Cycles advances both state machines, the return value reports whether any
// enabled interrupt is pending afterwards.
func (v *Vip) Cycles(cycles int, video VideoSink) bool {
	for i := 0; i < cycles; i++ {
		v.displayCounter++
		if v.displayCounter >= DisplayEighthPeriod {
			v.displayCounter = 0
			v.displayEighth = (v.displayEighth + 1) % displayEighths
			v.beginDisplayEighth(video)
		}
		if v.drawingState == Drawing {
			v.drawingCounter++
			if v.drawingCounter >= drawingPeriod*(v.drawingBlock+1)/DrawingBlockCount {
				v.endDrawingBlock()
			}
		}
	}
	return v.interruptPending&v.interruptEnable != 0
}

func (v *Vip) beginDisplayEighth(video VideoSink) {
	switch v.displayEighth {
	case 0:
		v.frameStart()
	case 1:
		v.composite(video)
		if v.displayEnable && v.syncEnable {
			v.displayState = DisplayLeftFramebuffer
		}
	case 3:
		if v.displayState == DisplayLeftFramebuffer {
			v.displayState = DisplayIdle
			v.interruptPending |= intLeftFramebufferEnd
		}
	case 5:
		if v.displayEnable && v.syncEnable {
			v.displayState = DisplayRightFramebuffer
		}
	case 7:
		if v.displayState == DisplayRightFramebuffer {
			v.interruptPending |= intRightFramebufferEnd
		}
		v.displayState = DisplayFinished
	}
}

func (v *Vip) frameStart() {
	v.displayState = DisplayIdle
	v.interruptPending |= intFrameStart
	v.frameCounter++
	if v.frameCounter > int(v.frmcyc) {
		v.frameCounter = 0
		v.gameStart()
	}
}

func (v *Vip) gameStart() {
	v.interruptPending |= intGameStart
	v.displayFirstFramebuffers = !v.displayFirstFramebuffers
	if v.drawingEnable {
		v.drawingState = Drawing
		v.drawingCounter = 0
		v.drawingBlock = 0
	} else {
		v.interruptPending |= intDrawingEnd
	}
}

func (v *Vip) endDrawingBlock() {
	v.drawBlock(v.drawingBlock)
	v.latchedBkcol = v.bkcol
	v.blockHitOut = v.drawingBlock == v.blockCompare
	if v.blockHitOut {
		v.interruptPending |= intBlockHit
	}
	if v.drawingBlock == DrawingBlockCount-1 {
		v.drawingState = DrawingIdle
		v.interruptPending |= intDrawingEnd
		return
	}
	v.drawingBlock++
}

// drawFramebuffers returns the left/right framebuffers currently drawn into.
func (v *Vip) drawFramebuffers() (uint32, uint32) {
	if v.displayFirstFramebuffers {
		return leftFramebuffer1, rightFramebuffer1
	}
	return leftFramebuffer0, rightFramebuffer0
}

// displayFramebuffers returns the left/right framebuffers currently shown.
func (v *Vip) displayFramebuffers() (uint32, uint32) {
	if v.displayFirstFramebuffers {
		return leftFramebuffer0, rightFramebuffer0
	}
	return leftFramebuffer1, rightFramebuffer1
}

// displayReset implements DPRST, it also clears the display interrupts.
func (v *Vip) displayReset() {
	v.displayState = DisplayFinished
	v.interruptEnable &^= intDisplayMask
	v.interruptPending &^= intDisplayMask
}

// drawingReset implements XPRST.
func (v *Vip) drawingReset() {
	v.drawingState = DrawingIdle
	v.blockHitOut = false
	v.interruptEnable &^= intDrawingMask
	v.interruptPending &^= intDrawingMask
}
