package vb

import "testing"

func TestTimerZero(t *testing.T) {
	b := newTestInterconnect(t)
	b.WriteByte(0x02000018, 1) // TLR
	b.WriteByte(0x0200001c, 0) // THR
	b.WriteByte(0x02000020, 0x09)
	if vector, ok := b.Cycles(LargeIntervalPeriod-1, nil, nil); ok {
		t.Fatalf("interrupt before the first tick: vector=0x%04x", vector)
	}
	vector, ok := b.Cycles(1, nil, nil)
	if !ok || vector != TimerInterruptVector {
		t.Fatalf("b.Cycles: got=(0x%04x, %v), want=(0x%04x, true)", vector, ok, TimerInterruptVector)
	}
	tcr, _ := b.ReadByte(0x02000020)
	if tcr&0x02 == 0 {
		t.Errorf("TCR: got=0x%02x, want Z-STAT set", tcr)
	}
	// The next tick reloads the counter and the one after reaches zero again.
	if _, ok := b.Cycles(LargeIntervalPeriod, nil, nil); ok {
		t.Errorf("interrupt on reload")
	}
	if got := b.timer.Counter(); got != 1 {
		t.Errorf("timer.Counter(): got=%d, want=1", got)
	}
	if _, ok := b.Cycles(LargeIntervalPeriod, nil, nil); !ok {
		t.Errorf("no interrupt on the second zero")
	}
}

func TestTimerStatusClear(t *testing.T) {
	timer := NewTimer()
	timer.writeCounterReloadLow(1)
	timer.writeControl(0x01)
	timer.Cycles(LargeIntervalPeriod)
	if !timer.ZeroStatus() {
		t.Fatalf("timer.ZeroStatus(): got=false, want=true")
	}
	// The counter is still zero so the status sticks.
	timer.writeControl(0x05)
	if !timer.ZeroStatus() {
		t.Errorf("timer.ZeroStatus() after clearing at zero: got=false, want=true")
	}
	timer.Cycles(LargeIntervalPeriod)
	timer.writeControl(0x05)
	if timer.ZeroStatus() {
		t.Errorf("timer.ZeroStatus() after clearing: got=true, want=false")
	}
}

func TestTimerSmallInterval(t *testing.T) {
	timer := NewTimer()
	timer.writeCounterReloadLow(3)
	timer.writeControl(0x19)
	raised := 0
	for i := 0; i < 3*SmallIntervalPeriod; i++ {
		if timer.Cycles(1) {
			raised++
		}
	}
	if raised != 1 {
		t.Errorf("interrupts: got=%d, want=1", raised)
	}
	if got := timer.String(); got == "" {
		t.Errorf("timer.String() is empty")
	}
}
