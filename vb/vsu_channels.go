package vb

// intervalReg is SxINT.
// bit    7      5    4-0
//        enable auto interval
type intervalReg struct {
	enable  bool
	auto    bool
	data    byte
	counter int
}

func (r *intervalReg) write(data byte) {
	r.enable = data&0x80 != 0
	r.auto = data&0x20 != 0
	r.data = data & 0x1f
	r.counter = 0
}

// durationTick disables the channel once the interval has elapsed.
func (r *intervalReg) durationTick() {
	if !r.enable || !r.auto {
		return
	}
	r.counter++
	if r.counter > int(r.data) {
		r.enable = false
	}
}

// lrvReg is SxLRV, the left volume in the high nibble.
type lrvReg struct {
	left  byte
	right byte
}

func (r *lrvReg) write(data byte) {
	r.left = data >> 4
	r.right = data & 0x0f
}

// envelope is SxEV0 and the common bits of SxEV1.
// EV0: bit 7-4 reload, 3 direction (1 = grow), 2-0 step interval
// EV1: bit 1 repeat, 0 enable
type envelope struct {
	reload  byte
	grow    bool
	step    byte
	repeat  bool
	enable  bool
	level   byte
	counter int
}

func (e *envelope) writeEV0(data byte) {
	e.reload = data >> 4
	e.grow = data&0x08 != 0
	e.step = data & 0x07
	e.level = e.reload
}

func (e *envelope) writeEV1(data byte) {
	e.repeat = data&0x02 != 0
	e.enable = data&0x01 != 0
}

func (e *envelope) tick() {
	if !e.enable {
		return
	}
	e.counter++
	if e.counter <= int(e.step) {
		return
	}
	e.counter = 0
	switch {
	case e.grow && e.level < 15:
		e.level++
	case !e.grow && e.level > 0:
		e.level--
	case e.repeat:
		e.level = e.reload
	}
}

// voice is the state every channel has.
type voice struct {
	interval    intervalReg
	lrv         lrvReg
	env         envelope
	freq        uint16 // 11 bits
	freqCounter int
}

func (c *voice) writeFreqLow(data byte) {
	c.freq = c.freq&0x700 | uint16(data)
}

func (c *voice) writeFreqHigh(data byte) {
	c.freq = c.freq&0x0ff | uint16(data&0x07)<<8
}

// freqTick advances the frequency counter and reports whether a period
// (2048 - freq ticks) has elapsed.
func (c *voice) freqTick() bool {
	c.freqCounter++
	if c.freqCounter >= 2048-int(c.freq) {
		c.freqCounter = 0
		return true
	}
	return false
}

func (c *voice) start() {
	c.env.counter = 0
	c.freqCounter = 0
}

// amplitude returns the weight for one side, the envelope level scaled by
// the 4 bit volume.
func amplitude(level, volume byte) int {
	if level == 0 || volume == 0 {
		return 0
	}
	return (int(level)*int(volume))>>3 + 1
}

// standardChannel plays one of the five waveforms, channels 1-4 and the base
// of channel 5.
type standardChannel struct {
	voice
	waveform byte
	phase    int
}

func (c *standardChannel) writeInterval(data byte) {
	c.interval.write(data)
	if c.interval.enable {
		c.start()
		c.phase = 0
	}
}

func (c *standardChannel) frequencyTick() {
	if c.interval.enable && c.freqTick() {
		c.phase = (c.phase + 1) & 31
	}
}

func (c *standardChannel) output(waves *[waveformBanks][waveformLength]byte) int {
	if c.waveform >= waveformBanks {
		return 0
	}
	return int(waves[c.waveform][c.phase])
}

// Channel 5 EV1 bits
const (
	sweepModEnable = 1 << 6
	modRepeat      = 1 << 5
	modFunction    = 1 << 4
)

// sweepModChannel is channel 5, a standard channel whose frequency can be
// swept or modulated through the modulation table.
// SWP: bit 7 clock (1 = 7.68ms), 6-4 interval, 3 direction (1 = up), 2-0 shift
type sweepModChannel struct {
	standardChannel

	sweepModOn bool
	repeat     bool
	modulation bool

	clockLarge bool
	period     int
	up         bool
	shift      uint

	baseFreq   uint16
	counter    int
	subCounter int
	modPhase   int
}

func (c *sweepModChannel) writeInterval(data byte) {
	c.standardChannel.writeInterval(data)
	if c.interval.enable {
		c.counter = 0
		c.subCounter = 0
		c.modPhase = 0
	}
}

func (c *sweepModChannel) writeFreqLow(data byte) {
	c.voice.writeFreqLow(data)
	c.baseFreq = c.freq
}

func (c *sweepModChannel) writeFreqHigh(data byte) {
	c.voice.writeFreqHigh(data)
	c.baseFreq = c.freq
}

func (c *sweepModChannel) writeEV1(data byte) {
	c.env.writeEV1(data)
	c.sweepModOn = data&sweepModEnable != 0
	c.repeat = data&modRepeat != 0
	c.modulation = data&modFunction != 0
}

func (c *sweepModChannel) writeSweepMod(data byte) {
	c.clockLarge = data&0x80 != 0
	c.period = int(data>>4) & 0x07
	c.up = data&0x08 != 0
	c.shift = uint(data & 0x07)
}

// sweepModTick runs on the small (0.96ms) clock, the large clock is 8 of them.
func (c *sweepModChannel) sweepModTick(modTable *[modulationLength]int8) {
	if !c.interval.enable || !c.sweepModOn || c.period == 0 {
		return
	}
	if c.clockLarge {
		c.subCounter++
		if c.subCounter < 8 {
			return
		}
		c.subCounter = 0
	}
	c.counter++
	if c.counter < c.period {
		return
	}
	c.counter = 0
	if c.modulation {
		c.modulate(modTable)
	} else {
		c.sweep()
	}
}

func (c *sweepModChannel) sweep() {
	delta := c.freq >> c.shift
	if c.up {
		next := int(c.freq) + int(delta)
		if next > 0x7ff {
			c.interval.enable = false
			return
		}
		c.freq = uint16(next)
	} else {
		c.freq -= delta
	}
}

func (c *sweepModChannel) modulate(modTable *[modulationLength]int8) {
	if c.modPhase >= modulationLength {
		return
	}
	c.freq = uint16(int(c.baseFreq)+int(modTable[c.modPhase])) & 0x7ff
	c.modPhase++
	if c.modPhase == modulationLength && c.repeat {
		c.modPhase = 0
	}
}

// lfsrTaps are the feedback bit positions selected by the tap location.
var lfsrTaps = [8]uint{14, 10, 13, 4, 8, 6, 9, 11}

const lfsrReset = 0x7fff

// noiseChannel is channel 6, a 15 bit LFSR clocked at 500kHz.
type noiseChannel struct {
	voice
	tap  byte
	lfsr uint16
}

func (c *noiseChannel) writeInterval(data byte) {
	c.interval.write(data)
	if c.interval.enable {
		c.start()
		c.lfsr = lfsrReset
	}
}

func (c *noiseChannel) writeEV1(data byte) {
	c.env.writeEV1(data)
	c.tap = (data >> 4) & 0x07
}

func (c *noiseChannel) noiseTick() {
	if c.interval.enable && c.freqTick() {
		bit := (c.lfsr>>7 ^ c.lfsr>>lfsrTaps[c.tap]) & 1
		c.lfsr = (c.lfsr<<1 | bit) & 0x7fff
	}
}

func (c *noiseChannel) output() int {
	if c.lfsr&1 != 0 {
		return 0
	}
	return 0x3f
}
