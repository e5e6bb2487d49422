package vb

import (
	"bytes"
	"encoding/gob"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// newHaltingVirtualBoy creates a console whose reset vector holds a HALT.
func newHaltingVirtualBoy(t *testing.T) *VirtualBoy {
	buf := make([]byte, 1024*1024)
	buf[0xffff0] = 0x00
	buf[0xffff1] = 0x68
	rom, err := NewRom(buf)
	if err != nil {
		t.Fatal(err)
	}
	sram, err := NewSram(nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewVirtualBoy(rom, sram)
}

func TestVirtualBoyHalt(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	cycles, watchpoint, err := vb.Step(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 1 || watchpoint {
		t.Errorf("vb.Step(): got=(%d, %v), want=(1, false)", cycles, watchpoint)
	}
	if vb.CPU().PC() != 0xfffffff0 || !vb.CPU().Halted() {
		t.Errorf("pc, halted: got=0x%08x, %v, want=0xfffffff0, true", vb.CPU().PC(), vb.CPU().Halted())
	}
	if vb.Cycles() != 1 {
		t.Errorf("vb.Cycles(): got=%d, want=1", vb.Cycles())
	}
}

func TestVirtualBoyStepCycles(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	audio := &testAudio{}
	total, _, err := vb.StepCycles(sampleClockPeriod*4, nil, audio)
	if err != nil {
		t.Fatal(err)
	}
	if total != sampleClockPeriod*4 {
		t.Errorf("total: got=%d, want=%d", total, sampleClockPeriod*4)
	}
	if len(audio.frames) != 4 {
		t.Errorf("audio frames: got=%d, want=4", len(audio.frames))
	}
}

func TestVirtualBoyReset(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	vb.CPU().AddWatchpoint(0x05000000)
	vb.Interconnect().WriteByte(0x06000000, 0x42)
	vb.StepCycles(10, nil, nil)
	vb.Reset()
	if vb.Cycles() != 0 || vb.CPU().Halted() {
		t.Errorf("cycles, halted: got=%d, %v, want=0, false", vb.Cycles(), vb.CPU().Halted())
	}
	if got, _ := vb.Interconnect().ReadByte(0x06000000); got != 0x42 {
		t.Errorf("SRAM after reset: got=0x%02x, want=0x42", got)
	}
	if got := vb.CPU().Watchpoints(); len(got) != 1 || got[0] != 0x05000000 {
		t.Errorf("watchpoints after reset: got=%v, want=[0x05000000]", got)
	}
}

func TestSnapshot(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	b := vb.Interconnect()
	b.WriteByte(0x05000010, 0x11)
	b.WriteByte(0x06000010, 0x22)
	vb.CPU().SetReg(5, 0x55)
	vb.StepCycles(100, nil, nil)
	s := vb.Snapshot()

	b.WriteByte(0x05000010, 0x99)
	b.WriteByte(0x06000010, 0x99)
	vb.CPU().SetReg(5, 0x99)
	vb.StepCycles(100, nil, nil)

	for i := 0; i < 2; i++ {
		vb.Restore(s)
		if got, _ := b.ReadByte(0x05000010); got != 0x11 {
			t.Errorf("WRAM: got=0x%02x, want=0x11", got)
		}
		if got, _ := b.ReadByte(0x06000010); got != 0x22 {
			t.Errorf("SRAM: got=0x%02x, want=0x22", got)
		}
		if got := vb.CPU().Reg(5); got != 0x55 {
			t.Errorf("r5: got=0x%08x, want=0x55", got)
		}
		if vb.Cycles() != 100 {
			t.Errorf("vb.Cycles(): got=%d, want=100", vb.Cycles())
		}
		// Changes after a restore don't leak into the snapshot.
		b.WriteByte(0x06000010, 0x77)
	}
	if _, _, err := vb.Step(nil, nil); err != nil {
		t.Errorf("vb.Step() after restore: %v", err)
	}
}

func newVirtualBoyWithRom(t *testing.T, rom *Rom) *VirtualBoy {
	sram, err := NewSram(nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewVirtualBoy(rom, sram)
}

// newLoopingRom starts the timer, then loops storing a running sum of the
// timer status to WRAM.
func newLoopingRom(t *testing.T) *Rom {
	buf := make([]byte, 1024)
	put := func(offset int, program ...[]uint16) {
		for _, inst := range program {
			for _, h := range inst {
				buf[offset] = byte(h)
				buf[offset+1] = byte(h >> 8)
				offset += 2
			}
		}
	}
	// 0xfffffff0 is 0x3f0 in a 1 KiB ROM, 0xfffffc00 is 0x000.
	put(0x3f0, encodeIV(0x2a, -0x3f0)) // JR 0xfffffc00
	put(0x000,
		encodeV(0x2f, 0, 2, 0x0500), // MOVHI 0x0500, r0, r2
		encodeV(0x2f, 0, 4, 0x0200), // MOVHI 0x0200, r0, r4
		encodeI(0x10, 1, 5),         // MOV 1, r5
		encodeV(0x34, 4, 5, 0x18),   // ST.B r5, 0x18[r4] (TLR)
		encodeV(0x34, 4, 0, 0x1c),   // ST.B r0, 0x1c[r4] (THR)
		encodeV(0x34, 4, 5, 0x20),   // ST.B r5, 0x20[r4] (TCR)
		encodeI(0x11, 1, 3),         // 0x16: ADD 1, r3
		encodeV(0x30, 4, 6, 0x20),   // LD.B r6, 0x20[r4]
		encodeI(0x01, 6, 7),         // ADD r6, r7
		encodeI(0x01, 3, 7),         // ADD r3, r7
		encodeV(0x37, 2, 7, 0),      // ST.W r7, 0[r2]
		encodeI(0x11, 4, 2),         // ADD 4, r2
		encodeIII(5, 0x16-0x26),     // 0x26: BR 0x16
	)
	rom, err := NewRom(buf)
	if err != nil {
		t.Fatal(err)
	}
	return rom
}

func TestSnapshotIntoFreshVirtualBoy(t *testing.T) {
	rom := newLoopingRom(t)
	original := newVirtualBoyWithRom(t, rom)
	startSquare(original.Interconnect().Vsu())
	original.Interconnect().WriteByte(0x06000000, 0x5a)
	if _, _, err := original.StepCycles(60000, nil, nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(original.Snapshot()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded := &Snapshot{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	restored := newVirtualBoyWithRom(t, rom)
	restored.Restore(decoded)
	if !reflect.DeepEqual(restored.Snapshot(), original.Snapshot()) {
		t.Fatalf("restored state differs from the original")
	}

	originalAudio, restoredAudio := &testAudio{}, &testAudio{}
	for i := 0; i < 20000; i++ {
		if _, _, err := original.Step(nil, originalAudio); err != nil {
			t.Fatal(err)
		}
		if _, _, err := restored.Step(nil, restoredAudio); err != nil {
			t.Fatal(err)
		}
		if original.CPU().PC() != restored.CPU().PC() || original.CPU().Reg(7) != restored.CPU().Reg(7) {
			t.Fatalf("step %d: pc, r7: got=0x%08x, 0x%08x, want=0x%08x, 0x%08x", i,
				restored.CPU().PC(), restored.CPU().Reg(7), original.CPU().PC(), original.CPU().Reg(7))
		}
	}
	if original.CPU().Reg(3) == 0 {
		t.Fatalf("the loop did not run")
	}
	if !reflect.DeepEqual(restoredAudio.frames, originalAudio.frames) {
		t.Errorf("audio frames differ")
	}
	if !reflect.DeepEqual(restored.Snapshot(), original.Snapshot()) {
		t.Errorf("state after 20000 steps differs from the original")
	}
	if got, _ := restored.Interconnect().ReadByte(0x06000000); got != 0x5a {
		t.Errorf("SRAM: got=0x%02x, want=0x5a", got)
	}
}

func runConsole(t *testing.T, vb *VirtualBoy, commands string) (int, string) {
	t.Helper()
	out := &strings.Builder{}
	c := NewDebugConsole(vb, NewLineReader(strings.NewReader(commands)), out, nil, nil)
	total := 0
	for {
		cycles, err := c.Step()
		total += cycles
		if errors.Is(err, ErrQuit) {
			return total, out.String()
		}
		if err != nil {
			t.Fatalf("c.Step(): %v", err)
		}
	}
}

func TestDebugConsole(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	cycles, out := runConsole(t, vb, "s 3\nx 0x07fffff0 2\ns abc\np regs\nfoo\nq\n")
	if cycles != 3 {
		t.Errorf("cycles: got=%d, want=3", cycles)
	}
	for _, want := range []string{
		"Executed 3 CPU cycles.",
		"0x07fffff0: 00 68",
		"Invalid step count",
		"r31=0x00000000",
		"Unknown command foo",
		"Quitting.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestDebugConsoleDumpKeepsSram(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	_, out := runConsole(t, vb, "x 0x06001000 4\nq\n")
	if !strings.Contains(out, "0x06001000: 00 00 00 00") {
		t.Errorf("output does not contain the dump:\n%s", out)
	}
	if got := vb.Interconnect().Sram().Size(); got != 0 {
		t.Errorf("SRAM size after a dump: got=%d, want=0", got)
	}
}

func TestDebugConsoleBreakpoint(t *testing.T) {
	vb := newHaltingVirtualBoy(t)
	cycles, out := runConsole(t, vb, "br fffffff0\nc\ndel fffffff0\nq\n")
	if cycles != 1 {
		t.Errorf("cycles: got=%d, want=1", cycles)
	}
	if !strings.Contains(out, "Break at: 0xfffffff0") {
		t.Errorf("output does not contain the break:\n%s", out)
	}
}
