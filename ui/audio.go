package ui

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/jyane/jvb/vb"
)

const sampleRate = 44100

// ring receives frames at the VSU rate and hands them out at sampleRate.
// The emulation and the audio callback run on different threads.
type ring struct {
	mu     sync.Mutex
	frames []vb.AudioFrame
	head   int
	count  int
	phase  int
}

func newRing() *ring {
	// Half a second of latency at most, older frames are dropped.
	return &ring{frames: make([]vb.AudioFrame, sampleRate/2)}
}

// AppendFrame resamples by picking the nearest frame.
func (r *ring) AppendFrame(frame vb.AudioFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase += sampleRate
	for r.phase >= vb.SampleRate {
		r.phase -= vb.SampleRate
		if r.count == len(r.frames) {
			r.head = (r.head + 1) % len(r.frames)
			r.count--
		}
		r.frames[(r.head+r.count)%len(r.frames)] = frame
		r.count++
	}
}

// pop returns silence once the ring runs dry.
func (r *ring) pop() (vb.AudioFrame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return vb.AudioFrame{}, false
	}
	frame := r.frames[r.head]
	r.head = (r.head + 1) % len(r.frames)
	r.count--
	return frame, true
}

// Audio is an audio sink playing through the default portaudio device.
type Audio struct {
	*ring
	stream *portaudio.Stream
}

func NewAudio() *Audio {
	return &Audio{ring: newRing()}
}

func (a *Audio) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("Failed to initialize portaudio: %w", err)
	}
	// out is interleaved, left then right.
	cb := func(out []float32) {
		for i := 0; i+1 < len(out); i += 2 {
			frame, _ := a.pop()
			out[i] = float32(frame.Left) / 32768
			out[i+1] = float32(frame.Right) / 32768
		}
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, 0, cb)
	if err != nil {
		return fmt.Errorf("Failed to open the audio stream: %w", err)
	}
	a.stream = stream
	if err := stream.Start(); err != nil {
		return fmt.Errorf("Failed to start the audio stream: %w", err)
	}
	return nil
}

func (a *Audio) Terminate() {
	if a.stream != nil {
		a.stream.Close()
	}
	portaudio.Terminate()
}
