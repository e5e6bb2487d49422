package ui

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoAudio is an audio sink playing through oto, the player pulls signed 16
// bit little endian stereo from Read.
type OtoAudio struct {
	*ring
	ctx    *oto.Context
	player *oto.Player
}

func NewOtoAudio() *OtoAudio {
	return &OtoAudio{ring: newRing()}
}

func (a *OtoAudio) Start() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("Failed to create the oto context: %w", err)
	}
	<-ready
	a.ctx = ctx
	a.player = ctx.NewPlayer(a)
	a.player.Play()
	return nil
}

// Read fills p with whole frames, silence when the emulation falls behind.
func (a *OtoAudio) Read(p []byte) (int, error) {
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		frame, _ := a.pop()
		p[i] = byte(frame.Left)
		p[i+1] = byte(uint16(frame.Left) >> 8)
		p[i+2] = byte(frame.Right)
		p[i+3] = byte(uint16(frame.Right) >> 8)
	}
	return n, nil
}

func (a *OtoAudio) Terminate() {
	if a.player != nil {
		a.player.Close()
	}
}
