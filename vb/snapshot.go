package vb

// Snapshot is a copy of every mutable part of a VirtualBoy. Every field is
// exported so that a serializer outside this package can save and load it.
// The ROM is immutable and isn't part of it.
type Snapshot struct {
	CPU         CPUState
	Cache       CacheState
	Wram        []byte
	Sram        []byte
	Vip         VipState
	Vsu         VsuState
	Timer       TimerState
	GamePad     GamePadState
	LinkPort    LinkPortState
	WaitControl byte
	Cycles      uint64
}

type CPUState struct {
	Regs   [32]uint32
	PC     uint32
	PSW    uint32
	EIPC   uint32
	EIPSW  uint32
	FEPC   uint32
	FEPSW  uint32
	ECR    uint32
	CHCW   uint32
	ADTRE  uint32
	Halted bool
}

type CacheState struct {
	Entries [cacheEntries]CacheEntry
	Hits    uint64
	Misses  uint64
	Enabled bool
}

type TimerState struct {
	Interval            Interval
	ZeroInterruptEnable bool
	ZeroStatus          bool
	Enable              bool
	Reload              uint16
	Counter             uint16
	TickCounter         int
	ZeroInterrupt       bool
}

type GamePadState struct {
	Buttons    uint16
	LowBattery bool
	Control    byte
}

type LinkPortState struct {
	Control      byte
	AuxControl   byte
	TransmitData byte
	ReceiveData  byte
	Transfers    int
}

type VipState struct {
	Vram []byte

	DisplayState     DisplayState
	DrawingState     DrawingState
	InterruptPending uint16
	InterruptEnable  uint16

	DisplayEnable bool
	RefreshEnable bool
	SyncEnable    bool
	ColumnLock    bool

	DrawingEnable bool
	BlockCompare  int
	BlockHitOut   bool

	BRTA   byte
	BRTB   byte
	BRTC   byte
	REST   byte
	FRMCYC byte
	SPT    [4]uint16
	GPLT   [4]byte
	JPLT   [4]byte
	BKCOL  byte

	LatchedBKCOL             byte
	DisplayCounter           int
	DisplayEighth            int
	FrameCounter             int
	DisplayFirstFramebuffers bool
	DrawingCounter           int
	DrawingBlock             int
}

// VoiceState holds the registers and counters every sound channel has.
type VoiceState struct {
	IntervalEnable  bool
	IntervalAuto    bool
	IntervalData    byte
	IntervalCounter int

	Left  byte
	Right byte

	EnvelopeReload  byte
	EnvelopeGrow    bool
	EnvelopeStep    byte
	EnvelopeRepeat  bool
	EnvelopeEnable  bool
	EnvelopeLevel   byte
	EnvelopeCounter int

	Freq        uint16
	FreqCounter int
}

type WaveChannelState struct {
	Voice    VoiceState
	Waveform byte
	Phase    int
}

type SweepModChannelState struct {
	Wave WaveChannelState

	SweepModOn bool
	Repeat     bool
	Modulation bool
	ClockLarge bool
	Period     int
	Up         bool
	Shift      uint

	BaseFreq   uint16
	Counter    int
	SubCounter int
	ModPhase   int
}

type NoiseChannelState struct {
	Voice VoiceState
	Tap   byte
	LFSR  uint16
}

type VsuState struct {
	Waves    [waveformBanks][waveformLength]byte
	ModTable [modulationLength]int8

	Channels [4]WaveChannelState
	Channel5 SweepModChannelState
	Channel6 NoiseChannelState

	DurationCounter  int
	EnvelopeCounter  int
	FrequencyCounter int
	NoiseCounter     int
	SweepModCounter  int
	SampleCounter    int
}

func (c *V810) saveState() CPUState {
	return CPUState{
		Regs:   c.regs,
		PC:     c.pc,
		PSW:    c.psw.encode(),
		EIPC:   c.eipc,
		EIPSW:  c.eipsw,
		FEPC:   c.fepc,
		FEPSW:  c.fepsw,
		ECR:    c.ecr,
		CHCW:   c.chcw,
		ADTRE:  c.adtre,
		Halted: c.halted,
	}
}

func (c *V810) loadState(s CPUState) {
	c.regs = s.Regs
	c.regs[0] = 0
	c.pc = s.PC
	c.psw.decodeFrom(s.PSW)
	c.eipc, c.eipsw = s.EIPC, s.EIPSW
	c.fepc, c.fepsw = s.FEPC, s.FEPSW
	c.ecr = s.ECR
	c.chcw = s.CHCW
	c.adtre = s.ADTRE
	c.halted = s.Halted
	c.watchpoint = false
	c.lastExecution = ""
}

func (c *Cache) saveState() CacheState {
	return CacheState{Entries: c.entries, Hits: c.hits, Misses: c.misses, Enabled: c.enabled}
}

func (c *Cache) loadState(s CacheState) {
	c.entries = s.Entries
	c.hits, c.misses = s.Hits, s.Misses
	c.enabled = s.Enabled
}

func (t *Timer) saveState() TimerState {
	return TimerState{
		Interval:            t.interval,
		ZeroInterruptEnable: t.zeroInterruptEnable,
		ZeroStatus:          t.zeroStatus,
		Enable:              t.enable,
		Reload:              t.reload,
		Counter:             t.counter,
		TickCounter:         t.tickCounter,
		ZeroInterrupt:       t.zeroInterrupt,
	}
}

func (t *Timer) loadState(s TimerState) {
	t.interval = s.Interval
	t.zeroInterruptEnable = s.ZeroInterruptEnable
	t.zeroStatus = s.ZeroStatus
	t.enable = s.Enable
	t.reload = s.Reload
	t.counter = s.Counter
	t.tickCounter = s.TickCounter
	t.zeroInterrupt = s.ZeroInterrupt
}

func (g *GamePad) saveState() GamePadState {
	return GamePadState{Buttons: g.buttons, LowBattery: g.lowBattery, Control: g.control}
}

func (g *GamePad) loadState(s GamePadState) {
	g.buttons, g.lowBattery, g.control = s.Buttons, s.LowBattery, s.Control
}

func (l *LinkPort) saveState() LinkPortState {
	return LinkPortState{
		Control:      l.control,
		AuxControl:   l.auxControl,
		TransmitData: l.transmitData,
		ReceiveData:  l.receiveData,
		Transfers:    l.transfers,
	}
}

func (l *LinkPort) loadState(s LinkPortState) {
	l.control, l.auxControl = s.Control, s.AuxControl
	l.transmitData, l.receiveData = s.TransmitData, s.ReceiveData
	l.transfers = s.Transfers
}

func (v *Vip) saveState() VipState {
	return VipState{
		Vram:                     append([]byte(nil), v.vram[:]...),
		DisplayState:             v.displayState,
		DrawingState:             v.drawingState,
		InterruptPending:         v.interruptPending,
		InterruptEnable:          v.interruptEnable,
		DisplayEnable:            v.displayEnable,
		RefreshEnable:            v.refreshEnable,
		SyncEnable:               v.syncEnable,
		ColumnLock:               v.columnLock,
		DrawingEnable:            v.drawingEnable,
		BlockCompare:             v.blockCompare,
		BlockHitOut:              v.blockHitOut,
		BRTA:                     v.brta,
		BRTB:                     v.brtb,
		BRTC:                     v.brtc,
		REST:                     v.rest,
		FRMCYC:                   v.frmcyc,
		SPT:                      v.spt,
		GPLT:                     v.gplt,
		JPLT:                     v.jplt,
		BKCOL:                    v.bkcol,
		LatchedBKCOL:             v.latchedBkcol,
		DisplayCounter:           v.displayCounter,
		DisplayEighth:            v.displayEighth,
		FrameCounter:             v.frameCounter,
		DisplayFirstFramebuffers: v.displayFirstFramebuffers,
		DrawingCounter:           v.drawingCounter,
		DrawingBlock:             v.drawingBlock,
	}
}

func (v *Vip) loadState(s VipState) {
	v.vram = [vramSize]byte{}
	copy(v.vram[:], s.Vram)
	v.displayState, v.drawingState = s.DisplayState, s.DrawingState
	v.interruptPending, v.interruptEnable = s.InterruptPending, s.InterruptEnable
	v.displayEnable = s.DisplayEnable
	v.refreshEnable = s.RefreshEnable
	v.syncEnable = s.SyncEnable
	v.columnLock = s.ColumnLock
	v.drawingEnable = s.DrawingEnable
	v.blockCompare = s.BlockCompare
	v.blockHitOut = s.BlockHitOut
	v.brta, v.brtb, v.brtc, v.rest = s.BRTA, s.BRTB, s.BRTC, s.REST
	v.frmcyc = s.FRMCYC
	v.spt, v.gplt, v.jplt = s.SPT, s.GPLT, s.JPLT
	v.bkcol, v.latchedBkcol = s.BKCOL, s.LatchedBKCOL
	v.displayCounter = s.DisplayCounter
	v.displayEighth = s.DisplayEighth
	v.frameCounter = s.FrameCounter
	v.displayFirstFramebuffers = s.DisplayFirstFramebuffers
	v.drawingCounter = s.DrawingCounter
	v.drawingBlock = s.DrawingBlock
}

func (c *voice) saveState() VoiceState {
	return VoiceState{
		IntervalEnable:  c.interval.enable,
		IntervalAuto:    c.interval.auto,
		IntervalData:    c.interval.data,
		IntervalCounter: c.interval.counter,
		Left:            c.lrv.left,
		Right:           c.lrv.right,
		EnvelopeReload:  c.env.reload,
		EnvelopeGrow:    c.env.grow,
		EnvelopeStep:    c.env.step,
		EnvelopeRepeat:  c.env.repeat,
		EnvelopeEnable:  c.env.enable,
		EnvelopeLevel:   c.env.level,
		EnvelopeCounter: c.env.counter,
		Freq:            c.freq,
		FreqCounter:     c.freqCounter,
	}
}

func (c *voice) loadState(s VoiceState) {
	c.interval = intervalReg{enable: s.IntervalEnable, auto: s.IntervalAuto, data: s.IntervalData, counter: s.IntervalCounter}
	c.lrv = lrvReg{left: s.Left, right: s.Right}
	c.env = envelope{
		reload:  s.EnvelopeReload,
		grow:    s.EnvelopeGrow,
		step:    s.EnvelopeStep,
		repeat:  s.EnvelopeRepeat,
		enable:  s.EnvelopeEnable,
		level:   s.EnvelopeLevel,
		counter: s.EnvelopeCounter,
	}
	c.freq = s.Freq
	c.freqCounter = s.FreqCounter
}

func (c *standardChannel) saveState() WaveChannelState {
	return WaveChannelState{Voice: c.voice.saveState(), Waveform: c.waveform, Phase: c.phase}
}

func (c *standardChannel) loadState(s WaveChannelState) {
	c.voice.loadState(s.Voice)
	c.waveform, c.phase = s.Waveform, s.Phase
}

func (c *sweepModChannel) saveState() SweepModChannelState {
	return SweepModChannelState{
		Wave:       c.standardChannel.saveState(),
		SweepModOn: c.sweepModOn,
		Repeat:     c.repeat,
		Modulation: c.modulation,
		ClockLarge: c.clockLarge,
		Period:     c.period,
		Up:         c.up,
		Shift:      c.shift,
		BaseFreq:   c.baseFreq,
		Counter:    c.counter,
		SubCounter: c.subCounter,
		ModPhase:   c.modPhase,
	}
}

func (c *sweepModChannel) loadState(s SweepModChannelState) {
	c.standardChannel.loadState(s.Wave)
	c.sweepModOn, c.repeat, c.modulation = s.SweepModOn, s.Repeat, s.Modulation
	c.clockLarge = s.ClockLarge
	c.period = s.Period
	c.up = s.Up
	c.shift = s.Shift
	c.baseFreq = s.BaseFreq
	c.counter, c.subCounter = s.Counter, s.SubCounter
	c.modPhase = s.ModPhase
}

func (c *noiseChannel) saveState() NoiseChannelState {
	return NoiseChannelState{Voice: c.voice.saveState(), Tap: c.tap, LFSR: c.lfsr}
}

func (c *noiseChannel) loadState(s NoiseChannelState) {
	c.voice.loadState(s.Voice)
	c.tap, c.lfsr = s.Tap, s.LFSR
}

func (v *Vsu) saveState() VsuState {
	s := VsuState{
		Waves:            v.waves,
		ModTable:         v.modTable,
		Channel5:         v.channel5.saveState(),
		Channel6:         v.channel6.saveState(),
		DurationCounter:  v.durationCounter,
		EnvelopeCounter:  v.envelopeCounter,
		FrequencyCounter: v.frequencyCounter,
		NoiseCounter:     v.noiseCounter,
		SweepModCounter:  v.sweepModCounter,
		SampleCounter:    v.sampleCounter,
	}
	for i := range v.channels {
		s.Channels[i] = v.channels[i].saveState()
	}
	return s
}

func (v *Vsu) loadState(s VsuState) {
	v.waves, v.modTable = s.Waves, s.ModTable
	for i := range v.channels {
		v.channels[i].loadState(s.Channels[i])
	}
	v.channel5.loadState(s.Channel5)
	v.channel6.loadState(s.Channel6)
	v.durationCounter = s.DurationCounter
	v.envelopeCounter = s.EnvelopeCounter
	v.frequencyCounter = s.FrequencyCounter
	v.noiseCounter = s.NoiseCounter
	v.sweepModCounter = s.SweepModCounter
	v.sampleCounter = s.SampleCounter
}

// Snapshot captures the current state.
func (v *VirtualBoy) Snapshot() *Snapshot {
	b := v.interconnect
	return &Snapshot{
		CPU:         v.cpu.saveState(),
		Cache:       v.cpu.cache.saveState(),
		Wram:        append([]byte(nil), b.wram.data[:]...),
		Sram:        append([]byte(nil), b.sram.data...),
		Vip:         b.vip.saveState(),
		Vsu:         b.vsu.saveState(),
		Timer:       b.timer.saveState(),
		GamePad:     b.gamePad.saveState(),
		LinkPort:    b.linkPort.saveState(),
		WaitControl: b.waitControl,
		Cycles:      v.cycles,
	}
}

// Restore replaces the current state with s, s can be restored again later
// and into any VirtualBoy running the same ROM. Watchpoints are kept.
func (v *VirtualBoy) Restore(s *Snapshot) {
	v.cpu.loadState(s.CPU)
	v.cpu.cache.loadState(s.Cache)

	b := v.interconnect
	b.wram.data = [WramSize]byte{}
	copy(b.wram.data[:], s.Wram)
	b.sram.data = append([]byte(nil), s.Sram...)
	b.vip.loadState(s.Vip)
	b.vsu.loadState(s.Vsu)
	b.timer.loadState(s.Timer)
	b.gamePad.loadState(s.GamePad)
	b.linkPort.loadState(s.LinkPort)
	b.waitControl = s.WaitControl
	v.cycles = s.Cycles
}
