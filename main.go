package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/jyane/jvb/record"
	"github.com/jyane/jvb/statsview"
	"github.com/jyane/jvb/ui"
	"github.com/jyane/jvb/vb"
)

var (
	path       = flag.String("path", "./rom/sample.vb", "path to Virtual Boy ROM file")
	sramPath   = flag.String("sram", "", "path to the SRAM image, defaults to the ROM path with .srm")
	width      = flag.Int("width", vb.ScreenWidth*2, "window width")
	height     = flag.Int("height", vb.ScreenHeight*2, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode")
	audioOut   = flag.String("audio", "portaudio", "audio backend: portaudio, oto or none")
	wavPath    = flag.String("wav", "", "also write the audio to a WAV file")
	gamma      = flag.Bool("gamma", true, "apply gamma correction to the brightness levels")
	format     = flag.String("format", "xrgb8888", "frame buffer format: xrgb1555, rgb565 or xrgb8888")
	screenshot = flag.String("screenshot", "", "run headless and write the last frame to a BMP file")
	frames     = flag.Int("frames", 300, "frames to run headless with -screenshot")
	stats      = flag.Bool("statsview", false, "serve runtime statistics while running")
	statsAddr  = flag.String("statsaddr", statsview.DefaultAddress, "address of the -statsview server")
)

// frameCycles is the length of a VIP frame in CPU cycles.
const frameCycles = vb.CPUFrequency / 50

// audioTee hands every frame to all of its sinks.
type audioTee []vb.AudioSink

func (t audioTee) AppendFrame(frame vb.AudioFrame) {
	for _, s := range t {
		s.AppendFrame(frame)
	}
}

type stdio struct {
	io.Reader
	io.Writer
}

func init() {
	runtime.LockOSThread()
}

func defaultSramPath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".srm"
}

// runDebugConsole reads commands until quit, in raw mode when stdin is a
// terminal so the line can be edited.
func runDebugConsole(console *vb.VirtualBoy, video vb.VideoSink, audio vb.AudioSink) {
	var in vb.LineReader = vb.NewLineReader(os.Stdin)
	var out io.Writer = os.Stdout
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			glog.Fatalln("Failed to set raw mode: ", err)
		}
		defer term.Restore(fd, oldState)
		t := term.NewTerminal(stdio{os.Stdin, os.Stdout}, "> ")
		in, out = t, t
	}
	c := vb.NewDebugConsole(console, in, out, video, audio)
	for {
		if _, err := c.Step(); err != nil {
			if !errors.Is(err, vb.ErrQuit) && !errors.Is(err, io.EOF) {
				glog.Errorf("Debugger stopped: %v", err)
			}
			return
		}
	}
}

// runHeadless runs the given number of frames and saves the last one.
func runHeadless(console *vb.VirtualBoy, recorder *record.FrameRecorder, audio vb.AudioSink) {
	for i := 0; i < *frames; i++ {
		if _, _, err := console.StepCycles(frameCycles, recorder, audio); err != nil {
			glog.Errorf("Emulation stopped: %v", err)
			break
		}
	}
	fb := recorder.Last()
	if fb == nil {
		glog.Warningf("No frame was displayed in %d frames", *frames)
		return
	}
	if err := record.SaveScreenshot(*screenshot, fb); err != nil {
		glog.Errorln(err)
	}
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *stats {
		server := statsview.Start(*statsAddr)
		defer server.Stop()
		fmt.Fprintf(os.Stderr, "stats server available at %s\n", server.URL())
	}
	pixelFormat, err := vb.ParsePixelFormat(*format)
	if err != nil {
		glog.Fatalln(err)
	}
	rom, err := vb.LoadRom(*path)
	if err != nil {
		glog.Fatalln("Failed to read: "+*path+": ", err)
	}
	if *sramPath == "" {
		*sramPath = defaultSramPath(*path)
	}
	sram, err := vb.LoadSram(*sramPath)
	if err != nil {
		glog.Fatalln(err)
	}
	defer func() {
		if err := sram.Save(*sramPath); err != nil {
			glog.Errorln(err)
		}
	}()
	console := vb.NewVirtualBoy(rom, sram)

	var sinks audioTee
	if *wavPath != "" {
		w, err := record.NewWavWriter(*wavPath)
		if err != nil {
			glog.Fatalln(err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				glog.Errorln(err)
			}
		}()
		sinks = append(sinks, w)
	}
	headless := *debug || *screenshot != ""
	if !headless {
		switch *audioOut {
		case "portaudio":
			a := ui.NewAudio()
			if err := a.Start(); err != nil {
				glog.Fatalln(err)
			}
			defer a.Terminate()
			sinks = append(sinks, a)
		case "oto":
			a := ui.NewOtoAudio()
			if err := a.Start(); err != nil {
				glog.Fatalln(err)
			}
			defer a.Terminate()
			sinks = append(sinks, a)
		case "none":
		default:
			glog.Fatalf("Unknown audio backend: %s", *audioOut)
		}
	}
	var audio vb.AudioSink
	switch len(sinks) {
	case 0:
	case 1:
		audio = sinks[0]
	default:
		audio = sinks
	}

	switch {
	case *debug:
		runDebugConsole(console, record.NewFrameRecorder(pixelFormat, *gamma), audio)
	case *screenshot != "":
		runHeadless(console, record.NewFrameRecorder(pixelFormat, *gamma), audio)
	default:
		ui.Start(console, *width, *height, pixelFormat, *gamma, audio)
	}
}
