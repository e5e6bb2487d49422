package record

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/jyane/jvb/vb"
)

func TestWavWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.wav")
	w, err := NewWavWriter(filename)
	if err != nil {
		t.Fatal(err)
	}
	const frames = wavChunk + 100
	for i := 0; i < frames; i++ {
		w.AppendFrame(vb.AudioFrame{Left: int16(i), Right: -int16(i)})
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != frames {
		t.Errorf("w.Frames(): got=%d, want=%d", w.Frames(), frames)
	}
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if int(d.SampleRate) != vb.SampleRate || d.NumChans != 2 || d.BitDepth != 16 {
		t.Errorf("format: got=(%d, %d, %d), want=(%d, 2, 16)", d.SampleRate, d.NumChans, d.BitDepth, vb.SampleRate)
	}
	if len(buf.Data) != frames*2 {
		t.Fatalf("samples: got=%d, want=%d", len(buf.Data), frames*2)
	}
	if buf.Data[2*200] != 200 || buf.Data[2*200+1] != -200 {
		t.Errorf("frame 200: got=(%d, %d), want=(200, -200)", buf.Data[2*200], buf.Data[2*200+1])
	}
}

func TestScreenshot(t *testing.T) {
	r := NewFrameRecorder(vb.PixelFormatRGB565, true)
	if r.Last() != nil {
		t.Fatalf("r.Last() before a frame: got non nil")
	}
	r.FrameReady(r.FrameBuffer())
	if r.Frames() != 1 || r.Last() == nil {
		t.Fatalf("frames: got=%d", r.Frames())
	}
	var buf bytes.Buffer
	if err := EncodeBMP(&buf, r.Last()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("BM")) {
		t.Errorf("BMP header: got=%q", buf.Bytes()[:2])
	}
	filename := filepath.Join(t.TempDir(), "shot.bmp")
	if err := SaveScreenshot(filename, r.Last()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(buf.Len()) {
		t.Errorf("file size: got=%d, want=%d", info.Size(), buf.Len())
	}
}
