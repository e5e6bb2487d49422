package vb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrQuit is returned by DebugConsole.Step after the quit command.
var ErrQuit = errors.New("quit")

// LineReader is where the debug console reads its commands from,
// *term.Terminal satisfies it.
type LineReader interface {
	ReadLine() (string, error)
}

type bufferedLineReader struct {
	r *bufio.Reader
}

// NewLineReader reads newline terminated commands from r.
func NewLineReader(r io.Reader) LineReader {
	return &bufferedLineReader{bufio.NewReader(r)}
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// DebugConsole a Virtual Boy console for debugging, you can execute some
// commands through a terminal.
// commands:
//   s [N|Nd|Ns]:
//     execute N step(s), d prints the state after every step, s runs N
//     emulated seconds.
//   c:
//     continue until a breakpoint or a watchpoint.
//   p [cpu|regs|cache|vip|timer|vsu]:
//     print.
//   x ADDRESS [N]:
//     dump N bytes of memory.
//   br ADDRESS, wp ADDRESS, del ADDRESS:
//     set a break point, set a watch point, delete either.
//   r:
//     reset.
//   q:
//     quit.
type DebugConsole struct {
	vb          *VirtualBoy
	in          LineReader
	out         io.Writer
	video       VideoSink
	audio       AudioSink
	cycles      uint64
	breakpoints []uint32
}

func NewDebugConsole(vb *VirtualBoy, in LineReader, out io.Writer, video VideoSink, audio AudioSink) *DebugConsole {
	return &DebugConsole{vb: vb, in: in, out: out, video: video, audio: audio}
}

func (c *DebugConsole) Reset() {
	c.cycles = 0
	c.vb.Reset()
}

func (c *DebugConsole) step() (int, bool, error) {
	cycles, watchpoint, err := c.vb.Step(c.video, c.audio)
	c.cycles += uint64(cycles)
	if watchpoint {
		fmt.Fprintf(c.out, "Watchpoint hit by: %s\n", c.vb.cpu.LastExecution())
	}
	return cycles, watchpoint, err
}

func (c *DebugConsole) basePrint() {
	cpu := c.vb.cpu
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Executed cycles: %d\n", c.cycles)
	fmt.Fprintln(c.out, "Last: "+cpu.LastExecution())
	fmt.Fprintf(c.out, "CPU:  %s\n", cpu)
	fmt.Fprintf(c.out, "VIP:  %s\n", c.vb.interconnect.vip)
}

func (c *DebugConsole) printRegisters() {
	for i := 0; i < 32; i++ {
		fmt.Fprintf(c.out, "r%-2d=0x%08x ", i, c.vb.cpu.Reg(i))
		if i%4 == 3 {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Fprintln(c.out, c.vb.cpu)
	case "r", "regs":
		c.printRegisters()
	case "ca", "cache":
		fmt.Fprintln(c.out, c.vb.cpu.cache)
	case "v", "vip":
		fmt.Fprintln(c.out, c.vb.interconnect.vip)
	case "t", "timer":
		fmt.Fprintln(c.out, c.vb.interconnect.timer)
	case "s", "vsu":
		for i := 0; i < channelCount; i++ {
			fmt.Fprintf(c.out, "channel %d: enabled=%v\n", i+1, c.vb.interconnect.vsu.ChannelEnabled(i))
		}
	default:
		fmt.Fprintf(c.out, "Unknown device %s\n", args[1])
	}
}

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

func (c *DebugConsole) dumpCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("Usage: x ADDRESS [N]")
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	n := 16
	if len(args) > 2 {
		if n, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("Invalid length %q: %w", args[2], err)
		}
	}
	for i := 0; i < n; i++ {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintln(c.out)
			}
			fmt.Fprintf(c.out, "0x%08x:", address+uint32(i))
		}
		data, err := c.vb.interconnect.PeekByte(address + uint32(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, " %02x", data)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *DebugConsole) checkBreak() bool {
	for _, b := range c.breakpoints {
		if b == c.vb.cpu.pc {
			fmt.Fprintf(c.out, "Break at: 0x%08x\n", b)
			return true
		}
	}
	return false
}

var stepArgRe = regexp.MustCompile("^([0-9]+)([ds]?)$")

func (c *DebugConsole) stepCommand(args []string) (int, error) {
	if len(args) < 2 {
		cycles, _, err := c.step()
		return cycles, err
	}
	m := stepArgRe.FindStringSubmatch(args[1])
	if m == nil {
		fmt.Fprintf(c.out, "Invalid step count %q\n", args[1])
		return 0, nil
	}
	num, _ := strconv.Atoi(m[1])
	cycles := 0
	switch m[2] {
	case "s":
		// Emulated seconds, not wall clock ones.
		for cycles < CPUFrequency*num {
			v, watchpoint, err := c.step()
			cycles += v
			if err != nil || watchpoint || c.checkBreak() {
				return cycles, err
			}
		}
	default:
		for i := 0; i < num; i++ {
			v, watchpoint, err := c.step()
			if m[2] == "d" {
				c.basePrint()
			}
			cycles += v
			if err != nil || watchpoint || c.checkBreak() {
				return cycles, err
			}
		}
	}
	return cycles, nil
}

func (c *DebugConsole) continueCommand() (int, error) {
	cycles := 0
	for {
		v, watchpoint, err := c.step()
		cycles += v
		if err != nil || watchpoint || c.checkBreak() {
			return cycles, err
		}
	}
}

func (c *DebugConsole) pointCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("Usage: %s ADDRESS", args[0])
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "br", "breakpoint":
		c.breakpoints = append(c.breakpoints, address)
	case "wp", "watchpoint":
		c.vb.cpu.AddWatchpoint(address)
	default:
		c.vb.cpu.RemoveWatchpoint(address)
		for i, b := range c.breakpoints {
			if b == address {
				c.breakpoints = append(c.breakpoints[:i], c.breakpoints[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Step reads and executes one command, it returns the executed cycles.
// ErrQuit is returned once the user quits.
func (c *DebugConsole) Step() (int, error) {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit\n")
	line, err := c.in.ReadLine()
	if err != nil {
		return 0, err
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return 0, nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step", "c", "continue":
		var cycles int
		if args[0] == "c" || args[0] == "continue" {
			cycles, err = c.continueCommand()
		} else {
			cycles, err = c.stepCommand(args)
		}
		c.basePrint() // Print data before it die.
		if err != nil {
			return cycles, err
		}
		fmt.Fprintf(c.out, "Executed %d CPU cycles.\n", cycles)
		return cycles, nil
	case "x":
		if err := c.dumpCommand(args); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "br", "breakpoint", "wp", "watchpoint", "del", "delete":
		if err := c.pointCommand(args); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "r", "reset":
		c.Reset()
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return 0, ErrQuit
	default:
		fmt.Fprintf(c.out, "Unknown command %s\n", line)
	}
	// step command was not executed.
	return 0, nil
}
