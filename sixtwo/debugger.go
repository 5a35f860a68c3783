package sixtwo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// Debugger drives an interactive single-step session over a CPU. It is a
// blocking line-oriented loop, not an event-driven TUI: each call to
// ReadCommand reads one command line and returns, so the caller's own read
// loop stays in control of when the next command is requested (spec.md §5's
// concurrency model explicitly rules out an owning event loop here).
//
// Command letters and their meaning are taken verbatim from spec.md §4.6,
// grounded on original_source/processor.py's showdebugger/COMMANDS:
// c show CPU state, e execute one instruction, f switch to free-run, h help,
// m@AAAA read the byte at an address, p show the current opcode, r reset,
// s dump the stack page, t halt, z dump the zero page.
type Debugger struct {
	CPU    *CPU
	in     *bufio.Scanner
	out    io.Writer
	quit   bool
	header lipgloss.Style
}

// NewDebugger wraps a CPU with an interactive session reading commands
// from in and writing output to out.
func NewDebugger(cpu *CPU, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{
		CPU:    cpu,
		in:     bufio.NewScanner(in),
		out:    out,
		header: lipgloss.NewStyle().Bold(true),
	}
}

// Prompt writes the "> " prompt with no trailing newline, for callers that
// echo it to an interactive terminal before blocking on ReadCommand.
func (d *Debugger) Prompt() {
	fmt.Fprint(d.out, "> ")
}

// ReadCommand blocks for one line of input and dispatches it. It returns
// false once the session should end (the 't' command, or end of input).
func (d *Debugger) ReadCommand() bool {
	if d.quit || !d.in.Scan() {
		return false
	}
	d.dispatch(strings.TrimSpace(d.in.Text()))
	return !d.quit
}

func (d *Debugger) dispatch(line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])[:1]

	switch cmd {
	case "c":
		d.cmdState()
	case "e":
		d.cmdExecute()
	case "f":
		d.cmdFreeRun()
	case "h":
		d.cmdHelp()
	case "m":
		d.cmdMemory(fields[0])
	case "p":
		d.cmdOpcode()
	case "r":
		d.CPU.Reset()
		fmt.Fprintln(d.out, "reset")
	case "s":
		d.cmdStack()
	case "t":
		d.quit = true
		fmt.Fprintln(d.out, "halted")
	case "z":
		d.cmdZeroPage()
	default:
		fmt.Fprintf(d.out, "unknown command %q, try h\n", fields[0])
	}
}

// cmdExecute runs exactly one instruction, stopping between every step
// (spec.md §4.6's "execute one instruction").
func (d *Debugger) cmdExecute() {
	if _, err := d.CPU.Step(); err != nil {
		fmt.Fprintln(d.out, err)
	}
}

// cmdFreeRun switches to free-run: step without further prompting until
// halted or PC runs past the loaded program's end address, per spec.md
// §4.6's "Free-run runs until PC > end-address or explicit halt."
func (d *Debugger) cmdFreeRun() {
	for !d.CPU.Halted && d.CPU.PC <= d.CPU.EndAddr {
		if _, err := d.CPU.Step(); err != nil {
			fmt.Fprintln(d.out, err)
			return
		}
	}
	fmt.Fprintln(d.out, "free-run complete")
}

// cmdState renders register and flag state side by side in one
// lipgloss.JoinHorizontal row, as hejops/gone's debugger does for its
// register view, followed by a plain cycle-count line.
func (d *Debugger) cmdState() {
	regs := fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X SP=%02X", d.CPU.PC, d.CPU.A, d.CPU.X, d.CPU.Y, d.CPU.SP)
	flags := formatFlags(d.CPU.P)
	row := lipgloss.JoinHorizontal(lipgloss.Top, d.header.Render(regs), "  ", flags)
	fmt.Fprintln(d.out, row)
	fmt.Fprintf(d.out, "cycles=%d\n", d.CPU.Cycles)
}

// formatFlags renders the status byte in N V _ B D I Z C order, the
// convention hejops/gone's debugger and spec.md §5 both use.
func formatFlags(p byte) string {
	bits := []struct {
		name string
		mask byte
	}{
		{"N", FlagN}, {"V", FlagV}, {"_", FlagUnused}, {"B", FlagB},
		{"D", FlagD}, {"I", FlagI}, {"Z", FlagZ}, {"C", FlagC},
	}
	var sb strings.Builder
	for _, b := range bits {
		if p&b.mask != 0 {
			sb.WriteString(strings.ToUpper(b.name))
		} else {
			sb.WriteString(strings.ToLower(b.name))
		}
	}
	return sb.String()
}

func (d *Debugger) cmdHelp() {
	fmt.Fprintln(d.out, strings.TrimSpace(`
c  show CPU state
e  execute next instruction
f  continue (free run)
h  print this list of commands
m@AAAA  print the byte at address AAAA
p  print the current opcode
r  reset the CPU
s  dump the stack page
t  halt the program
z  dump the zero page
`))
}

// cmdMemory implements m@AAAA: split on '@', parse the hex address, print
// the single byte there (spec.md §4.6, SPEC_FULL.md §4), grounded on
// original_source/processor.py's showdebugger 'm' branch
// (`print("Value at address %04x is %02x" ...)`).
func (d *Debugger) cmdMemory(tok string) {
	idx := strings.IndexByte(tok, '@')
	if idx < 0 {
		fmt.Fprintln(d.out, "usage: m@AAAA")
		return
	}
	addr, err := parseHexArg(tok[idx+1:])
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	fmt.Fprintf(d.out, "Value at address %04X is %02X\n", addr, d.CPU.Mem.Read(addr))
}

// cmdOpcode prints the opcode byte at the current PC without advancing it,
// spec.md §4.6's "show current opcode".
func (d *Debugger) cmdOpcode() {
	op := d.CPU.Mem.Read(d.CPU.PC)
	fmt.Fprintf(d.out, "Current opcode: %02X\n", op)
}

// cmdStack dumps the full stack page, 0x0100-0x01FF.
func (d *Debugger) cmdStack() {
	if err := d.CPU.Mem.Dump(d.out, 0x0100, 256, nil); err != nil {
		fmt.Fprintln(d.out, err)
	}
}

func (d *Debugger) cmdZeroPage() {
	if err := d.CPU.Mem.Dump(d.out, 0, 256, nil); err != nil {
		fmt.Fprintln(d.out, err)
	}
}

func parseHexArg(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "$")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, newError(KindSyntaxError, "invalid address %q", s)
	}
	return uint32(v), nil
}

// registerSnapshot is the register-only subset of CPU that DumpState
// renders; dumping *CPU directly would walk its embedded 64 KiB Memory.
type registerSnapshot struct {
	A, X, Y byte
	SP      byte
	PC      uint32
	P       byte
	Cycles  uint64
	Halted  bool
}

// DumpState renders the CPU's register state via go-spew, used by the -e
// CLI mode to print a final snapshot after a run completes (SPEC_FULL.md
// §2).
func DumpState(w io.Writer, cpu *CPU) {
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true}
	cfg.Fdump(w, registerSnapshot{
		A: cpu.A, X: cpu.X, Y: cpu.Y, SP: cpu.SP,
		PC: cpu.PC, P: cpu.P, Cycles: cpu.Cycles, Halted: cpu.Halted,
	})
}
