// Package record writes what a Virtual Boy plays and shows to disk.
package record

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/golang/glog"

	"github.com/jyane/jvb/vb"
)

// Frames buffered before they are handed to the encoder.
const wavChunk = 4096

// WavWriter is an audio sink writing 16 bit stereo PCM at the VSU rate.
type WavWriter struct {
	filename string
	f        *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	frames   int
	err      error
}

func NewWavWriter(filename string) (*WavWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to create %s: %w", filename, err)
	}
	return &WavWriter{
		filename: filename,
		f:        f,
		enc:      wav.NewEncoder(f, vb.SampleRate, 16, 2, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: vb.SampleRate},
			Data:           make([]int, 0, wavChunk*2),
			SourceBitDepth: 16,
		},
	}, nil
}

// AppendFrame buffers the frame, the first write error is kept and returned
// by Close.
func (w *WavWriter) AppendFrame(frame vb.AudioFrame) {
	w.buf.Data = append(w.buf.Data, int(frame.Left), int(frame.Right))
	w.frames++
	if len(w.buf.Data) >= wavChunk*2 {
		w.flush()
	}
}

func (w *WavWriter) flush() {
	if len(w.buf.Data) == 0 || w.err != nil {
		return
	}
	if err := w.enc.Write(w.buf); err != nil {
		w.err = fmt.Errorf("Failed to write %s: %w", w.filename, err)
	}
	w.buf.Data = w.buf.Data[:0]
}

// Frames returns how many frames have been appended.
func (w *WavWriter) Frames() int {
	return w.frames
}

// Close writes the remaining frames and the header sizes.
func (w *WavWriter) Close() error {
	w.flush()
	if err := w.enc.Close(); err != nil && w.err == nil {
		w.err = fmt.Errorf("Failed to finish %s: %w", w.filename, err)
	}
	if err := w.f.Close(); err != nil && w.err == nil {
		w.err = err
	}
	glog.Infof("Wrote %d audio frames to %s", w.frames, w.filename)
	return w.err
}
