package record

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"github.com/jyane/jvb/vb"
)

// FrameRecorder is a video sink keeping the latest frame.
type FrameRecorder struct {
	fb     *vb.FrameBuffer
	frames int
}

func NewFrameRecorder(format vb.PixelFormat, gamma bool) *FrameRecorder {
	return &FrameRecorder{fb: vb.NewFrameBuffer(format, gamma)}
}

func (r *FrameRecorder) FrameBuffer() *vb.FrameBuffer {
	return r.fb
}

func (r *FrameRecorder) FrameReady(fb *vb.FrameBuffer) {
	r.frames++
}

// Frames returns how many frames have been composited.
func (r *FrameRecorder) Frames() int {
	return r.frames
}

// Last returns the latest frame, nil before the first one.
func (r *FrameRecorder) Last() *vb.FrameBuffer {
	if r.frames == 0 {
		return nil
	}
	return r.fb
}

// EncodeBMP writes fb as a BMP image.
func EncodeBMP(w io.Writer, fb *vb.FrameBuffer) error {
	return bmp.Encode(w, fb.Image())
}

// SaveScreenshot writes fb to filename as a BMP image.
func SaveScreenshot(filename string, fb *vb.FrameBuffer) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("Failed to create %s: %w", filename, err)
	}
	if err := EncodeBMP(f, fb); err != nil {
		f.Close()
		return fmt.Errorf("Failed to encode %s: %w", filename, err)
	}
	return f.Close()
}
