// Command sixtwo is a thin front end over the sixtwo package: it parses
// flags, opens files, and calls into the assembler, disassembler, or
// simulator. It carries no toolchain logic of its own, per spec.md §6.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/kpalmer/sixtwo/sixtwo"
)

func main() {
	app := &cli.App{
		Name:  "sixtwo",
		Usage: "assemble, disassemble, and simulate 6502 machine code",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "a", Usage: "assemble input to machine code"},
			&cli.BoolFlag{Name: "d", Usage: "disassemble input to assembly text"},
			&cli.BoolFlag{Name: "e", Usage: "execute assembled/raw input"},
			&cli.BoolFlag{Name: "g", Usage: "run an interactive step debugger"},
			&cli.StringFlag{Name: "i", Usage: "input file (default stdin)"},
			&cli.StringFlag{Name: "o", Usage: "output file (default stdout)"},
			&cli.StringFlag{Name: "s", Usage: "start address in hex, 1-FFFF"},
			&cli.BoolFlag{Name: "c", Usage: "include an address counter in output/input"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	modes := 0
	for _, f := range []string{"a", "d", "e", "g"} {
		if c.Bool(f) {
			modes++
		}
	}
	if modes != 1 {
		return cli.Exit("exactly one of -a, -d, -e, -g is required", 1)
	}

	start, err := startAddress(c.String("s"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	input, closeIn, err := openInput(c.String("i"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer closeIn()

	output, closeOut, err := openOutput(c.String("o"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer closeOut()

	showCounter := c.Bool("c")

	outName := c.String("o")
	if outName == "" {
		outName = "<stdout>"
	}

	switch {
	case c.Bool("a"):
		return runAssemble(input, output, showCounter)
	case c.Bool("d"):
		return runDisassemble(input, output, outName, start, showCounter)
	case c.Bool("e"):
		return runExecute(input, output, start)
	case c.Bool("g"):
		return runDebug(input, output, start)
	}
	return nil
}

func startAddress(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	var addr uint32
	if _, err := fmt.Sscanf(s, "%x", &addr); err != nil {
		return 0, fmt.Errorf("invalid start address %q", s)
	}
	if addr < 1 || addr > 0xFFFF {
		return 0, fmt.Errorf("start address %04X out of range 1..FFFF", addr)
	}
	return addr, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func runAssemble(in io.Reader, out io.Writer, showCounter bool) error {
	src, err := ioutil.ReadAll(in)
	if err != nil {
		return cli.Exit(err, 1)
	}

	asm := sixtwo.NewAssembler()
	result, errs := asm.Assemble(string(src))
	for _, e := range errs {
		fmt.Fprintln(out, e)
	}
	if len(errs) > 0 {
		return cli.Exit("assembly failed", 1)
	}

	for _, line := range result.Lines {
		text := formatHexLine(line.Bytes)
		if showCounter {
			text = fmt.Sprintf("%04X %s", line.Addr, text)
		}
		fmt.Fprintln(out, text)
	}
	return nil
}

func formatHexLine(bytes []byte) string {
	s := ""
	for i, b := range bytes {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X", b)
	}
	return s
}

func runDisassemble(in io.Reader, out io.Writer, outName string, start uint32, showCounter bool) error {
	data, err := ioutil.ReadAll(in)
	if err != nil {
		return cli.Exit(err, 1)
	}
	program, err := sixtwo.ParseHexListing(string(data))
	if err != nil {
		return cli.Exit(err, 1)
	}

	lines, disasmErr := sixtwo.DisassembleAll(program, start)

	ctx := sixtwo.NewToolchainContext(nil, out)
	ctx.ShowCounter = showCounter
	if err := sixtwo.WriteListing(ctx, outName, start, lines); err != nil {
		return cli.Exit(err, 1)
	}

	if disasmErr != nil {
		fmt.Fprintln(out, disasmErr)
		return cli.Exit("disassembly stopped early", 1)
	}
	return nil
}

func runExecute(in io.Reader, out io.Writer, start uint32) error {
	mem, endAddr, err := loadProgram(in, start)
	if err != nil {
		return cli.Exit(err, 1)
	}
	cpu := sixtwo.NewCPU(mem)
	cpu.SetPC(start)
	cpu.EndAddr = endAddr
	if err := cpu.Run(out, 10_000_000); err != nil {
		fmt.Fprintln(out, err)
		return cli.Exit("execution failed", 1)
	}
	sixtwo.DumpState(out, cpu)
	return nil
}

func runDebug(in io.Reader, out io.Writer, start uint32) error {
	mem, endAddr, err := loadProgram(in, start)
	if err != nil {
		return cli.Exit(err, 1)
	}
	cpu := sixtwo.NewCPU(mem)
	cpu.SetPC(start)
	cpu.EndAddr = endAddr
	dbg := sixtwo.NewDebugger(cpu, os.Stdin, out)

	sixtwo.WriteRunHeader(out)
	for {
		dbg.Prompt()
		if !dbg.ReadCommand() {
			break
		}
	}
	sixtwo.WriteRunFooter(out)
	return nil
}

// loadProgram reads a raw or -c address-prefixed hex listing from in and
// loads it into a fresh 64 KiB memory at start, for -e and -g mode. The
// returned end address is the last byte loaded (spec.md §3's CPU State),
// derived from Memory.Load's one-past-the-end return value.
func loadProgram(in io.Reader, start uint32) (*sixtwo.Memory, uint32, error) {
	data, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, 0, err
	}
	program, err := sixtwo.ParseHexListing(string(data))
	if err != nil {
		return nil, 0, err
	}
	mem := sixtwo.NewMemory()
	end, err := mem.Load(start, program)
	if err != nil {
		return nil, 0, err
	}
	return mem, (end - 1) & 0xFFFF, nil
}
