package vb

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// PixelFormat is the layout of a FrameBuffer, pixels are little endian.
type PixelFormat int

const (
	PixelFormatXRGB1555 PixelFormat = iota
	PixelFormatRGB565
	PixelFormatXRGB8888
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatXRGB1555:
		return "xrgb1555"
	case PixelFormatRGB565:
		return "rgb565"
	case PixelFormatXRGB8888:
		return "xrgb8888"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// ParsePixelFormat parses the names returned by PixelFormat.String.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for _, f := range []PixelFormat{PixelFormatXRGB1555, PixelFormatRGB565, PixelFormatXRGB8888} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("Unknown pixel format: %s", s)
}

// BytesPerPixel returns 2 or 4.
func (f PixelFormat) BytesPerPixel() int {
	if f == PixelFormatXRGB8888 {
		return 4
	}
	return 2
}

// FrameBuffer is the buffer a video sink hands over once per frame.
type FrameBuffer struct {
	Format PixelFormat
	Gamma  bool
	Pix    []byte // ScreenWidth*ScreenHeight pixels, row major
	// Populated is set once the VIP has filled Pix.
	Populated bool
}

func NewFrameBuffer(format PixelFormat, gamma bool) *FrameBuffer {
	return &FrameBuffer{
		Format: format,
		Gamma:  gamma,
		Pix:    make([]byte, ScreenWidth*ScreenHeight*format.BytesPerPixel()),
	}
}

// Stride returns the length of a row in bytes.
func (fb *FrameBuffer) Stride() int {
	return ScreenWidth * fb.Format.BytesPerPixel()
}

// VideoSink receives composited frames. FrameBuffer may return nil to skip
// compositing a frame.
type VideoSink interface {
	FrameBuffer() *FrameBuffer
	FrameReady(fb *FrameBuffer)
}

var gammaTable [256]byte

func init() {
	for i := range gammaTable {
		gammaTable[i] = byte(math.Round(math.Pow(float64(i)/255, 1/2.2) * 255))
	}
}

// brightness converts a 2 bit pixel code into an 8 bit intensity.
func (v *Vip) brightness(code byte) byte {
	var level int
	switch code {
	case 1:
		level = int(v.brta)
	case 2:
		level = int(v.brtb)
	case 3:
		level = int(v.brta) + int(v.brtb) + int(v.brtc)
	}
	level *= 2
	if level > 255 {
		level = 255
	}
	return byte(level)
}

// composite scans the displayed framebuffers out into the sink's buffer, the
// left image goes to the red channel and the right image to green and blue.
func (v *Vip) composite(video VideoSink) {
	if video == nil {
		return
	}
	fb := video.FrameBuffer()
	if fb == nil {
		return
	}
	if !v.displayEnable || !v.syncEnable {
		for i := range fb.Pix {
			fb.Pix[i] = 0
		}
	} else {
		var levels [4]byte
		for code := range levels {
			levels[code] = v.brightness(byte(code))
			if fb.Gamma {
				levels[code] = gammaTable[levels[code]]
			}
		}
		left, right := v.displayFramebuffers()
		bpp := fb.Format.BytesPerPixel()
		for y := 0; y < ScreenHeight; y++ {
			for x := 0; x < ScreenWidth; x++ {
				l := levels[v.readPixel(left, x, y)]
				r := levels[v.readPixel(right, x, y)]
				putPixel(fb.Pix[(y*ScreenWidth+x)*bpp:], fb.Format, l, r)
			}
		}
	}
	fb.Populated = true
	video.FrameReady(fb)
}

func putPixel(p []byte, format PixelFormat, l, r byte) {
	switch format {
	case PixelFormatXRGB1555:
		c := uint16(l>>3)<<10 | uint16(r>>3)<<5 | uint16(r>>3)
		p[0] = byte(c)
		p[1] = byte(c >> 8)
	case PixelFormatRGB565:
		c := uint16(l>>3)<<11 | uint16(r>>2)<<5 | uint16(r>>3)
		p[0] = byte(c)
		p[1] = byte(c >> 8)
	case PixelFormatXRGB8888:
		p[0] = r
		p[1] = r
		p[2] = l
		p[3] = 0xff
	}
}

// Image converts the buffer into an *image.RGBA.
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	bpp := fb.Format.BytesPerPixel()
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			p := fb.Pix[(y*ScreenWidth+x)*bpp:]
			var c color.RGBA
			switch fb.Format {
			case PixelFormatXRGB1555:
				v := uint16(p[0]) | uint16(p[1])<<8
				c = color.RGBA{expand5(v >> 10), expand5(v >> 5), expand5(v), 0xff}
			case PixelFormatRGB565:
				v := uint16(p[0]) | uint16(p[1])<<8
				c = color.RGBA{expand5(v >> 11), expand6(v >> 5), expand5(v), 0xff}
			case PixelFormatXRGB8888:
				c = color.RGBA{p[2], p[1], p[0], 0xff}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func expand5(v uint16) byte {
	v &= 0x1f
	return byte(v<<3 | v>>2)
}

func expand6(v uint16) byte {
	v &= 0x3f
	return byte(v<<2 | v>>4)
}
