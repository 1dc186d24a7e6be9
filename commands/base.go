package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/josephlewis42/myshell/core/config"
	getopt "github.com/pborman/getopt/v2"
)

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(sh *Shell, args []string, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(args, nil)
	if err != nil {
		sh.Log.V(1).Info("invalid invocation", "args", args, "error", err.Error())
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(sh.stderr(), "%s: %s\n\n", args[0], err)

		s.PrintHelp(sh.stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(sh.stdout())
		return 0
	}

	return callback()
}

// RunEachArg runs callback for every operand, reporting failures to stderr.
// The status is 1 if any operand failed.
func (s *SimpleCommand) RunEachArg(sh *Shell, args []string, callback func(string) error) int {
	return s.Run(sh, args, func() int {
		status := 0
		for _, arg := range s.Flags().Args() {
			if err := callback(arg); err != nil {
				fmt.Fprintf(sh.stderr(), "%s: %s\n", args[0], err)
				status = 1
			}
		}
		return status
	})
}

var (
	ColorBoldBlue  = []color.Attribute{color.FgBlue, color.Bold}
	ColorBoldGreen = []color.Attribute{color.FgGreen, color.Bold}
	ColorBoldRed   = []color.Attribute{color.FgRed, color.Bold}
)

// ColorPrinter decides whether output is colored based on the configured
// mode.
type ColorPrinter struct {
	Mode string
	// IsTerminal is consulted in auto mode, defaults to the color package's
	// own detection.
	IsTerminal func() bool
}

func (c *ColorPrinter) ShouldColor() bool {
	switch c.Mode {
	case config.ColorNever:
		return false
	case config.ColorAlways:
		return true
	default:
		if c.IsTerminal != nil {
			return c.IsTerminal()
		}
		return !color.NoColor
	}
}

func (c *ColorPrinter) Sprintf(attrs []color.Attribute, format string, a ...interface{}) string {
	if !c.ShouldColor() {
		return fmt.Sprintf(format, a...)
	}

	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprintf(format, a...)
}
