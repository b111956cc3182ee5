// Package clicmd implements the olive command-line tool: run a script file,
// or start a REPL when given none, using github.com/mna/mainer for flag
// parsing, exactly as the teacher's internal/maincmd does for its own CLI.
package clicmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/wldfngrs/olive/lang/vm"
)

const binName = "olive"

// Exit codes per the specification's §6 host contract: 64/74 are the usual
// sysexits.h EX_USAGE/EX_IOERR, reused rather than invented, and 65/70 are
// the COMPILE_ERROR/RUNTIME_ERROR codes the spec calls out by name.
const (
	exitUsage        mainer.ExitCode = 64
	exitIOFailure    mainer.ExitCode = 74
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<script>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<script>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and bytecode VM for the Olive scripting language.

Given a <script> path, compiles and runs that file. Given none, starts an
interactive REPL that keeps globals and interned strings alive across
lines.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --stress-gc               Collect garbage on every single
                                 allocation rather than only once the
                                 heap crosses its growth threshold.

More information: https://github.com/wldfngrs/olive
`, binName)
)

// Cmd is the parsed command line, populated by mainer.Parser via the
// `flag:"..."` struct tags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help     bool `flag:"h,help"`
	Version  bool `flag:"v,version"`
	StressGC bool `flag:"stress-gc" env:"GC_STRESS"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one script path may be given")
	}
	return nil
}

// Main parses args and dispatches to running a script or starting a REPL.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: "OLIVE_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	machine := vm.New()
	machine.Stdout = stdio.Stdout
	machine.StressGC = c.StressGC

	if len(c.args) == 1 {
		return runFile(machine, stdio, c.args[0])
	}
	return repl(machine, stdio)
}

func runFile(machine *vm.VM, stdio mainer.Stdio, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return exitIOFailure
	}
	result, err := machine.Interpret(source)
	return report(stdio, result, err)
}

func report(stdio mainer.Stdio, result vm.Result, err error) mainer.ExitCode {
	switch result {
	case vm.ResultCompileError:
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return exitCompileError
	case vm.ResultRuntimeError:
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return exitRuntimeError
	default:
		return mainer.Success
	}
}

// repl reads one line at a time, each its own InterpretREPL turn against
// the same *vm.VM — so globals, interned strings, and the constant pool
// all persist from line to line, per SPEC_FULL.md's REPL turn isolation.
func repl(machine *vm.VM, stdio mainer.Stdio) mainer.ExitCode {
	in := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !in.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return mainer.Success
		}
		line := in.Text()
		if line == "" {
			continue
		}
		if result, err := machine.InterpretREPL([]byte(line)); err != nil {
			report(stdio, result, err)
		}
	}
}
