package vb

import "fmt"

// Timer periods in CPU cycles (20MHz).
const (
	LargeIntervalPeriod = 2000 // 100us
	SmallIntervalPeriod = 400  // 20us
)

// Interval selects how often the timer counter decreases.
type Interval int

const (
	IntervalLarge Interval = iota
	IntervalSmall
)

func (i Interval) String() string {
	switch i {
	case IntervalLarge:
		return "100us"
	case IntervalSmall:
		return "20us"
	}
	panic("unknown timer interval")
}

func (i Interval) period() int {
	if i == IntervalSmall {
		return SmallIntervalPeriod
	}
	return LargeIntervalPeriod
}

// Timer is the 16-bit down counter in the hardware control register block.
// Reference:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#timer
//
// TCR bit assignments
// bit    4        3         2          1      0
//        T-CLK-SEL Z-INT-ENB Z-STAT-CLR Z-STAT T-ENB
type Timer struct {
	interval            Interval
	zeroInterruptEnable bool
	zeroStatus          bool
	enable              bool
	reload              uint16
	counter             uint16
	tickCounter         int
	zeroInterrupt       bool
}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) String() string {
	return fmt.Sprintf("enable=%v interval=%s counter=0x%04x reload=0x%04x zstat=%v zint=%v",
		t.enable, t.interval, t.counter, t.reload, t.zeroStatus, t.zeroInterruptEnable)
}

// ZeroStatus reports whether the counter has reached zero since the status
// was last cleared.
func (t *Timer) ZeroStatus() bool {
	return t.zeroStatus
}

// Counter returns the current counter value.
func (t *Timer) Counter() uint16 {
	return t.counter
}

func (t *Timer) readCounterReloadLow() byte {
	return byte(t.counter)
}

func (t *Timer) readCounterReloadHigh() byte {
	return byte(t.counter >> 8)
}

func (t *Timer) writeCounterReloadLow(data byte) {
	t.reload = t.reload&0xff00 | uint16(data)
	t.counter = t.reload
}

func (t *Timer) writeCounterReloadHigh(data byte) {
	t.reload = t.reload&0x00ff | uint16(data)<<8
	t.counter = t.reload
}

func (t *Timer) readControl() byte {
	var res byte = 0xe4 // unused bits read as 1
	if t.interval == IntervalSmall {
		res |= 1 << 4
	}
	if t.zeroInterruptEnable {
		res |= 1 << 3
	}
	if t.zeroStatus {
		res |= 1 << 1
	}
	if t.enable {
		res |= 1 << 0
	}
	return res
}

func (t *Timer) writeControl(data byte) {
	if data&(1<<4) != 0 {
		t.interval = IntervalSmall
	} else {
		t.interval = IntervalLarge
	}
	t.zeroInterruptEnable = data&(1<<3) != 0
	// The status can only be cleared once the counter has left zero, or while
	// the timer is stopped.
	if data&(1<<2) != 0 && (t.counter != 0 || !t.enable) {
		t.zeroStatus = false
	}
	if !t.zeroInterruptEnable {
		t.zeroInterrupt = false
	}
	enable := data&(1<<0) != 0
	if enable && !t.enable {
		t.tickCounter = 0
	}
	t.enable = enable
}

// Cycles advances the timer and reports whether a zero interrupt was raised.
func (t *Timer) Cycles(cycles int) bool {
	if t.enable {
		t.tickCounter += cycles
		period := t.interval.period()
		for t.tickCounter >= period {
			t.tickCounter -= period
			t.tick()
		}
	}
	raised := t.zeroInterrupt
	t.zeroInterrupt = false
	return raised
}

func (t *Timer) tick() {
	if t.counter == 0 {
		t.counter = t.reload
	} else {
		t.counter--
	}
	if t.counter == 0 {
		t.zeroStatus = true
		if t.zeroInterruptEnable {
			t.zeroInterrupt = true
		}
	}
}
