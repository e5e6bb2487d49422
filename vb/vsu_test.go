package vb

import "testing"

type testAudio struct {
	frames []AudioFrame
}

func (a *testAudio) AppendFrame(frame AudioFrame) {
	a.frames = append(a.frames, frame)
}

// startSquare fills waveform 0 with the highest level and plays it on
// channel 1 at full volume.
func startSquare(v *Vsu) {
	for i := uint32(0); i < waveformLength; i++ {
		v.writeByte(i*4, 0x3f)
	}
	v.writeByte(0x404, 0xff) // S1LRV
	v.writeByte(0x410, 0xf0) // S1EV0
	v.writeByte(0x418, 0x00) // S1RAM
	v.writeByte(0x400, 0x80) // S1INT
}

func TestVsuSilence(t *testing.T) {
	v := NewVsu()
	audio := &testAudio{}
	v.Cycles(sampleClockPeriod*10, audio)
	if len(audio.frames) != 10 {
		t.Fatalf("frames: got=%d, want=10", len(audio.frames))
	}
	for i, f := range audio.frames {
		if f != (AudioFrame{}) {
			t.Errorf("frame %d: got=%+v, want silence", i, f)
		}
	}
}

func TestVsuMix(t *testing.T) {
	v := NewVsu()
	startSquare(v)
	if !v.ChannelEnabled(0) {
		t.Fatalf("channel 1 is not enabled")
	}
	audio := &testAudio{}
	v.Cycles(sampleClockPeriod, audio)
	// 63 * ((15*15)>>3 + 1) = 1827, the low 3 bits are dropped and the sum
	// is shifted to 16 bits.
	want := AudioFrame{Left: 3648, Right: 3648}
	if len(audio.frames) != 1 || audio.frames[0] != want {
		t.Errorf("frames: got=%+v, want=[%+v]", audio.frames, want)
	}
}

func TestVsuStop(t *testing.T) {
	v := NewVsu()
	startSquare(v)
	// Waveforms are locked while a channel plays.
	v.writeByte(0x000, 0x01)
	if got := v.waves[0][0]; got != 0x3f {
		t.Errorf("locked waveform: got=0x%02x, want=0x3f", got)
	}
	v.writeByte(regSSTOP, 0x01)
	for i := 0; i < channelCount; i++ {
		if v.ChannelEnabled(i) {
			t.Errorf("channel %d enabled after SSTOP", i+1)
		}
	}
	v.writeByte(0x000, 0x01)
	if got := v.waves[0][0]; got != 0x01 {
		t.Errorf("waveform after SSTOP: got=0x%02x, want=0x01", got)
	}
}

func TestVsuAutoInterval(t *testing.T) {
	v := NewVsu()
	startSquare(v)
	// Auto stop after 2 duration ticks.
	v.writeByte(0x400, 0xa1)
	v.Cycles(durationClockPeriod, nil)
	if !v.ChannelEnabled(0) {
		t.Fatalf("channel 1 stopped early")
	}
	v.Cycles(durationClockPeriod, nil)
	if v.ChannelEnabled(0) {
		t.Errorf("channel 1 still enabled")
	}
}

func TestVsuNoise(t *testing.T) {
	v := NewVsu()
	v.writeByte(0x544, 0xff) // S6LRV
	v.writeByte(0x550, 0xf0) // S6EV0
	v.writeByte(0x54c, 0x07) // S6FQH
	v.writeByte(0x548, 0xff) // S6FQL
	v.writeByte(0x540, 0x80) // S6INT
	audio := &testAudio{}
	v.Cycles(sampleClockPeriod*64, audio)
	changes := 0
	for i := 1; i < len(audio.frames); i++ {
		if audio.frames[i] != audio.frames[i-1] {
			changes++
		}
	}
	if changes == 0 {
		t.Errorf("noise output never changed")
	}
}
