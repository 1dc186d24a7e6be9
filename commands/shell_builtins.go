package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/josephlewis42/myshell/core/logger"
	"github.com/josephlewis42/myshell/core/shell"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]*Builtin)

// Builtin is a command the shell runs itself.
type Builtin struct {
	Name  string
	Usage string
	Short string
	Main  ShellBuiltinFunc
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func addBuiltin(b *Builtin) {
	AllBuiltins[b.Name] = b
}

// ListBuiltins returns the registered builtins sorted by name.
func ListBuiltins() []*Builtin {
	var out []*Builtin
	for _, b := range AllBuiltins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (b *Builtin) command() *SimpleCommand {
	return &SimpleCommand{Use: b.Usage, Short: b.Short}
}

// dispatchBuiltin runs cmd if it is a variable assignment or a builtin. It is
// never offered a piped stage.
func (s *Shell) dispatchBuiltin(cmd *shell.Command) (int, bool) {
	if cmd.Empty() {
		return 0, false
	}

	// Assignments take effect for the rest of the session; further words are
	// ignored.
	if name, value, ok := shell.SplitAssignment(cmd.Args[0]); ok && shell.IsName(name) {
		s.Vars.Set(name, value)
		return 0, true
	}

	builtin, ok := AllBuiltins[cmd.Args[0]]
	if !ok {
		return 0, false
	}

	if cmd.OutputFile != "" {
		fd, err := os.OpenFile(cmd.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			s.errorf("%s: %v", cmd.OutputFile, unwrapPathError(err))
			return 1, true
		}
		defer fd.Close()

		s.out = fd
		defer func() { s.out = nil }()
	}

	s.record(builtinEvent(cmd.Args))
	return builtin.Main(s, cmd.Args), true
}

func builtinEvent(args []string) logger.Event {
	return &logger.RunCommand{Command: args, Builtin: true}
}

func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	cmd := AllBuiltins["cd"].command()

	return cmd.Run(s, args, func() int {
		var dir string
		switch operands := cmd.Flags().Args(); len(operands) {
		case 0:
			dir = os.Getenv("HOME")
		case 1:
			dir = operands[0]
		default:
			s.errorf("cd: too many arguments")
			return 1
		}

		if err := os.Chdir(dir); err != nil {
			s.errorf("cd: %s: %v", dir, unwrapPathError(err))
			return 1
		}
		return 0
	})
}

// Exit quits the shell
func Exit(s *Shell, args []string) int {
	cmd := AllBuiltins["exit"].command()

	return cmd.Run(s, args, func() int {
		status := 0
		if operands := cmd.Flags().Args(); len(operands) > 0 {
			n, err := strconv.Atoi(operands[0])
			if err != nil {
				s.errorf("exit: %s: numeric argument required", operands[0])
				return 1
			}
			status = n
		}

		s.Quit = true
		s.ExitStatus = status
		return status
	})
}

func Help(s *Shell, args []string) int {
	cmd := AllBuiltins["help"].command()

	return cmd.Run(s, args, func() int {
		w := s.stdout()
		fmt.Fprintf(w, "%s built-in commands:\n", Name)
		for _, b := range ListBuiltins() {
			fmt.Fprintf(w, "  %-20s%s\n", b.Usage, b.Short)
		}
		fmt.Fprintf(w, "  %-20s%s\n", "NAME=VALUE", "Set a shell variable.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Other commands are run as programs found on the PATH.")
		return 0
	})
}

func History(s *Shell, args []string) int {
	cmd := AllBuiltins["history"].command()
	clear := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(s, args, func() int {
		if *clear {
			s.History.Clear()
			if s.Readline != nil {
				s.Readline.Operation.ResetHistory()
			}
			return 0
		}

		s.History.Print(s.stdout())
		return 0
	})
}

func Jobs(s *Shell, args []string) int {
	cmd := AllBuiltins["jobs"].command()

	return cmd.Run(s, args, func() int {
		s.collectJobs()
		s.Jobs.Print(s.stdout())
		return 0
	})
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	cmd := AllBuiltins["pwd"].command()

	return cmd.Run(s, args, func() int {
		wd, err := os.Getwd()
		if err != nil {
			s.errorf("pwd: %v", err)
			return 1
		}
		fmt.Fprintln(s.stdout(), wd)
		return 0
	})
}

// Which locates commands the way the shell would run them.
func Which(s *Shell, args []string) int {
	cmd := AllBuiltins["which"].command()

	return cmd.RunEachArg(s, args, func(arg string) error {
		if _, ok := AllBuiltins[arg]; ok {
			fmt.Fprintf(s.stdout(), "%s: shell built-in command\n", arg)
			return nil
		}

		path, err := exec.LookPath(arg)
		if err != nil && !errors.Is(err, exec.ErrDot) {
			return fmt.Errorf("no %s in PATH", arg)
		}
		fmt.Fprintln(s.stdout(), path)
		return nil
	})
}

// Set lists the shell variables.
func Set(s *Shell, args []string) int {
	cmd := AllBuiltins["set"].command()

	return cmd.Run(s, args, func() int {
		w := s.stdout()
		if s.Vars.Len() == 0 {
			fmt.Fprintln(w, "No shell variables defined.")
			return 0
		}
		for _, kv := range s.Vars.List() {
			fmt.Fprintln(w, kv)
		}
		return 0
	})
}

func init() {
	addBuiltin(&Builtin{Name: "cd", Usage: "cd [DIR]", Short: "Change the working directory.", Main: Cd})
	addBuiltin(&Builtin{Name: "exit", Usage: "exit [N]", Short: "Terminate the shell.", Main: Exit})
	addBuiltin(&Builtin{Name: "help", Usage: "help", Short: "Display this help message.", Main: Help})
	addBuiltin(&Builtin{Name: "history", Usage: "history [-c]", Short: "List or clear the command history.", Main: History})
	addBuiltin(&Builtin{Name: "jobs", Usage: "jobs", Short: "List background jobs.", Main: Jobs})
	addBuiltin(&Builtin{Name: "pwd", Usage: "pwd", Short: "Print the working directory.", Main: Pwd})
	addBuiltin(&Builtin{Name: "which", Usage: "which [COMMAND...]", Short: "Locate a command.", Main: Which})
	addBuiltin(&Builtin{Name: "set", Usage: "set", Short: "List shell variables.", Main: Set})
}
