package vb

import "fmt"

// VirtualBoy connects the CPU to the interconnect. A step executes an
// instruction, then advances every other device by the cycles it took and
// hands a raised interrupt back to the CPU.
type VirtualBoy struct {
	cpu          *V810
	interconnect *Interconnect
	cycles       uint64 // executed since the last reset
}

// NewVirtualBoy creates a console around the cartridge images.
func NewVirtualBoy(rom *Rom, sram *Sram) *VirtualBoy {
	interconnect := NewInterconnect(rom, sram)
	return &VirtualBoy{
		cpu:          NewV810(interconnect),
		interconnect: interconnect,
	}
}

func (v *VirtualBoy) String() string {
	return fmt.Sprintf("cycles=%d cpu={%s} vip={%s} timer={%s}",
		v.cycles, v.cpu, v.interconnect.vip, v.interconnect.timer)
}

func (v *VirtualBoy) CPU() *V810 {
	return v.cpu
}

func (v *VirtualBoy) Interconnect() *Interconnect {
	return v.interconnect
}

func (v *VirtualBoy) GamePad() *GamePad {
	return v.interconnect.gamePad
}

// Cycles returns the cycles executed since the last reset.
func (v *VirtualBoy) Cycles() uint64 {
	return v.cycles
}

// Reset rebuilds every device, the ROM, the SRAM and the watchpoints are
// carried over.
func (v *VirtualBoy) Reset() {
	watchpoints := v.cpu.watchpoints
	interconnect := NewInterconnect(v.interconnect.rom, v.interconnect.sram)
	v.interconnect = interconnect
	v.cpu = NewV810(interconnect)
	v.cpu.watchpoints = watchpoints
	v.cycles = 0
}

// Step executes one instruction. It returns the cycles it took and whether a
// watchpoint was hit, errors are fatal.
func (v *VirtualBoy) Step(video VideoSink, audio AudioSink) (int, bool, error) {
	cycles, watchpoint, err := v.cpu.Step()
	if err != nil {
		return cycles, watchpoint, err
	}
	if vector, ok := v.interconnect.Cycles(cycles, video, audio); ok {
		v.cpu.RequestInterrupt(vector)
	}
	v.cycles += uint64(cycles)
	return cycles, watchpoint, nil
}

// StepCycles steps until at least n cycles have run or a watchpoint is hit.
func (v *VirtualBoy) StepCycles(n int, video VideoSink, audio AudioSink) (int, bool, error) {
	total := 0
	for total < n {
		cycles, watchpoint, err := v.Step(video, audio)
		total += cycles
		if err != nil || watchpoint {
			return total, watchpoint, err
		}
	}
	return total, false, nil
}
