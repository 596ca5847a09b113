package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cortesi/monty/pkg/monty"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive monty session",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runREPL()
	},
}

// runREPL drives a raw-mode terminal session, one source line bound
// and executed per Enter press. Each line is its own Executor since
// the prepared tree (and its namespace slot count) is fixed at
// Executor.New time and this core has no incremental re-Prepare step
// — a fresh Executor per line keeps the REPL within the one-Executor
// one-program contract the embedding API assumes, at the cost of not
// sharing bindings across lines (an accepted REPL-only limitation, not
// a core one).
func runREPL() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return replPlain(os.Stdin, os.Stdout)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, ">>> ")

	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stdout, "\r")
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		evalLine(t, line)
	}
}

// replPlain is the non-terminal fallback (piped stdin, tests): no
// prompt, no line editing, just one line at a time.
func replPlain(in io.Reader, out io.Writer) error {
	buf := make([]byte, 0, 4096)
	r := make([]byte, 1)
	for {
		n, err := in.Read(r)
		if n == 1 {
			if r[0] == '\n' {
				line := string(buf)
				buf = buf[:0]
				if line != "" {
					evalLine(out, line)
				}
				continue
			}
			buf = append(buf, r[0])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func evalLine(out io.Writer, line string) {
	ex, perr := monty.New(line, "<repl>", nil, monty.WithPrinter(writerPrinter{out}))
	if perr != nil {
		fmt.Fprintln(out, perr)
		return
	}
	defer ex.Close()

	exit := ex.Run(nil)
	switch exit.Kind {
	case monty.ExitReturn:
		fmt.Fprintln(out, ex.Repr(exit.Value))
	case monty.ExitException:
		fmt.Fprintln(out, exit.Exc.Error())
	case monty.ExitInternal:
		fmt.Fprintln(out, "internal error:", exit.Err.Reason)
	}
}

// writerPrinter adapts an io.Writer to monty.Printer for print().
type writerPrinter struct{ w io.Writer }

func (p writerPrinter) Write(s string) { fmt.Fprint(p.w, s) }
