package vb

import "github.com/golang/glog"

// Vsu stands for Virtual Sound Unit, 6 channels mixed into 16-bit stereo.
// References:
//   https://www.planetvb.com/content/downloads/documents/stsvb.html#vsu
//
// Clock periods in CPU cycles (20MHz).
const (
	SampleRate = 20000000 / sampleClockPeriod // ~41667Hz

	sampleClockPeriod    = 480
	durationClockPeriod  = 76805  // 260.4Hz
	envelopeClockPeriod  = 307218 // 65.1Hz
	frequencyClockPeriod = 4      // 5MHz
	noiseClockPeriod     = 40     // 500kHz
	sweepModClockPeriod  = 19200  // 0.96ms
)

const (
	waveformBanks    = 5
	waveformLength   = 32
	modulationLength = 32
	channelCount     = 6
)

// VSU memory map (address & 0x7ff), registers are 8 bits wide, 4 bytes apart
// 0x000 - 0x27F	Waveforms 0-4 (32 words of 6 bits each)
// 0x280 - 0x2FF	Modulation table (32 signed bytes)
// 0x400 - 0x57F	Channels 1-6, 0x40 bytes each
// 0x580       	SSTOP
const (
	waveformsEnd      = 0x280
	modulationEnd     = 0x300
	channelsStart     = 0x400
	channelsEnd       = 0x580
	channelRegsLength = 0x40
	regSSTOP          = 0x580
)

// Channel register indices ((address & 0x3f) / 4).
const (
	chINT = iota
	chLRV
	chFQL
	chFQH
	chEV0
	chEV1
	chRAM
	chSWP
)

// AudioFrame is one stereo sample.
type AudioFrame struct {
	Left  int16
	Right int16
}

// AudioSink receives frames at SampleRate, one at a time.
type AudioSink interface {
	AppendFrame(frame AudioFrame)
}

type Vsu struct {
	waves    [waveformBanks][waveformLength]byte
	modTable [modulationLength]int8

	channels [4]standardChannel
	channel5 sweepModChannel
	channel6 noiseChannel

	durationCounter  int
	envelopeCounter  int
	frequencyCounter int
	noiseCounter     int
	sweepModCounter  int
	sampleCounter    int
}

func NewVsu() *Vsu {
	v := &Vsu{}
	v.channel6.lfsr = lfsrReset
	return v
}

// voices returns the common state of all 6 channels, channel 1 first.
func (v *Vsu) voices() [channelCount]*voice {
	return [channelCount]*voice{
		&v.channels[0].voice,
		&v.channels[1].voice,
		&v.channels[2].voice,
		&v.channels[3].voice,
		&v.channel5.voice,
		&v.channel6.voice,
	}
}

// ChannelEnabled reports whether channel n (0-5) is producing output.
func (v *Vsu) ChannelEnabled(n int) bool {
	return v.voices()[n].interval.enable
}

func (v *Vsu) anyChannelActive() bool {
	for _, c := range v.voices() {
		if c.interval.enable {
			return true
		}
	}
	return false
}

// Cycles advances every channel clock and pushes the mixed frames to audio.
func (v *Vsu) Cycles(cycles int, audio AudioSink) {
	for i := 0; i < cycles; i++ {
		v.durationCounter++
		if v.durationCounter >= durationClockPeriod {
			v.durationCounter = 0
			for _, c := range v.voices() {
				c.interval.durationTick()
			}
		}
		v.envelopeCounter++
		if v.envelopeCounter >= envelopeClockPeriod {
			v.envelopeCounter = 0
			for _, c := range v.voices() {
				c.env.tick()
			}
		}
		v.frequencyCounter++
		if v.frequencyCounter >= frequencyClockPeriod {
			v.frequencyCounter = 0
			for j := range v.channels {
				v.channels[j].frequencyTick()
			}
			v.channel5.frequencyTick()
		}
		v.sweepModCounter++
		if v.sweepModCounter >= sweepModClockPeriod {
			v.sweepModCounter = 0
			v.channel5.sweepModTick(&v.modTable)
		}
		v.noiseCounter++
		if v.noiseCounter >= noiseClockPeriod {
			v.noiseCounter = 0
			v.channel6.noiseTick()
		}
		v.sampleCounter++
		if v.sampleCounter >= sampleClockPeriod {
			v.sampleCounter = 0
			frame := v.mix()
			if audio != nil {
				audio.AppendFrame(frame)
			}
		}
	}
}

func (v *Vsu) mix() AudioFrame {
	var left, right int
	add := func(c *voice, output int) {
		if !c.interval.enable {
			return
		}
		left += output * amplitude(c.env.level, c.lrv.left)
		right += output * amplitude(c.env.level, c.lrv.right)
	}
	for i := range v.channels {
		add(&v.channels[i].voice, v.channels[i].output(&v.waves))
	}
	add(&v.channel5.voice, v.channel5.output(&v.waves))
	add(&v.channel6.voice, v.channel6.output())
	// The DAC drops the low 3 bits, the sum of 6 channels fits in 15 bits.
	return AudioFrame{
		Left:  int16((left & 0xfff8) << 1),
		Right: int16((right & 0xfff8) << 1),
	}
}

// The VSU is write only.
func (v *Vsu) readByte(address uint32) byte {
	glog.V(1).Infof("VSU read: address=0x%03x\n", address)
	return 0
}

func (v *Vsu) writeByte(address uint32, data byte) {
	switch {
	case address < waveformsEnd:
		// Waveforms can only be rewritten while every channel is stopped.
		if v.anyChannelActive() {
			glog.V(1).Infof("Ignored VSU waveform write: address=0x%03x, data=0x%02x\n", address, data)
			return
		}
		v.waves[address/0x80][(address/4)%waveformLength] = data & 0x3f
	case address < modulationEnd:
		if v.anyChannelActive() {
			glog.V(1).Infof("Ignored VSU modulation write: address=0x%03x, data=0x%02x\n", address, data)
			return
		}
		v.modTable[(address/4)%modulationLength] = int8(data)
	case channelsStart <= address && address < channelsEnd:
		v.writeChannel(int(address-channelsStart)/channelRegsLength, int(address&0x3f)/4, data)
	case address == regSSTOP:
		if data&1 != 0 {
			for _, c := range v.voices() {
				c.interval.enable = false
			}
		}
	default:
		glog.V(1).Infof("Unimplemented VSU write: address=0x%03x, data=0x%02x\n", address, data)
	}
}

func (v *Vsu) writeChannel(channel, reg int, data byte) {
	c := v.voices()[channel]
	switch reg {
	case chINT:
		switch channel {
		case 4:
			v.channel5.writeInterval(data)
		case 5:
			v.channel6.writeInterval(data)
		default:
			v.channels[channel].writeInterval(data)
		}
	case chLRV:
		c.lrv.write(data)
	case chFQL:
		if channel == 4 {
			v.channel5.writeFreqLow(data)
		} else {
			c.writeFreqLow(data)
		}
	case chFQH:
		if channel == 4 {
			v.channel5.writeFreqHigh(data)
		} else {
			c.writeFreqHigh(data)
		}
	case chEV0:
		c.env.writeEV0(data)
	case chEV1:
		switch channel {
		case 4:
			v.channel5.writeEV1(data)
		case 5:
			v.channel6.writeEV1(data)
		default:
			c.env.writeEV1(data)
		}
	case chRAM:
		switch channel {
		case 4:
			v.channel5.waveform = data & 0x07
		case 5:
			glog.V(1).Infof("Ignored S6RAM write: data=0x%02x\n", data)
		default:
			v.channels[channel].waveform = data & 0x07
		}
	case chSWP:
		if channel == 4 {
			v.channel5.writeSweepMod(data)
		} else {
			glog.V(1).Infof("Ignored SWP write: channel=%d, data=0x%02x\n", channel+1, data)
		}
	}
}
