package vb

// Reference:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#gamepad

type Button int

// Game pad bit assignments, 1 means pressed otherwise 0.
// bit    15  14  13     12    11  10  9   8   7   6   5  4  3 2 1 0
// button RDD RDL Select Start LDU LDD LDL LDR RDR RDU LT RT B A 1 PWR
const (
	ButtonA Button = iota + 2
	ButtonB
	ButtonRightTrigger
	ButtonLeftTrigger
	ButtonRightDPadUp
	ButtonRightDPadRight
	ButtonLeftDPadRight
	ButtonLeftDPadLeft
	ButtonLeftDPadDown
	ButtonLeftDPadUp
	ButtonStart
	ButtonSelect
	ButtonRightDPadLeft
	ButtonRightDPadDown
)

const (
	gamePadLowBattery = 1 << 0
	gamePadSignature  = 1 << 1
)

// SCR bits
const (
	gamePadAbort            = 1 << 0
	gamePadStatus           = 1 << 1
	gamePadHardwareRead     = 1 << 2
	gamePadInterruptInhibit = 1 << 7
)

type GamePad struct {
	buttons    uint16
	lowBattery bool
	control    byte
}

func NewGamePad() *GamePad {
	return &GamePad{}
}

// Set replaces the button state, indexed by Button.
func (g *GamePad) Set(buttons map[Button]bool) {
	g.buttons = 0
	for b, pressed := range buttons {
		if pressed {
			g.buttons |= 1 << uint(b)
		}
	}
}

// SetButton updates a single button.
func (g *GamePad) SetButton(b Button, pressed bool) {
	if pressed {
		g.buttons |= 1 << uint(b)
	} else {
		g.buttons &^= 1 << uint(b)
	}
}

func (g *GamePad) SetLowBattery(low bool) {
	g.lowBattery = low
}

func (g *GamePad) state() uint16 {
	s := g.buttons | gamePadSignature
	if g.lowBattery {
		s |= gamePadLowBattery
	}
	return s
}

func (g *GamePad) readInputLow() byte {
	return byte(g.state())
}

func (g *GamePad) readInputHigh() byte {
	return byte(g.state() >> 8)
}

// readControl reads SCR, a hardware read completes instantly so S-STAT is
// always clear.
func (g *GamePad) readControl() byte {
	return g.control &^ (gamePadStatus | gamePadHardwareRead)
}

func (g *GamePad) writeControl(data byte) {
	if data&gamePadAbort != 0 {
		data &^= gamePadHardwareRead
	}
	g.control = data
}
