package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/go-logr/logr"
	"github.com/josephlewis42/myshell/core/config"
	"github.com/josephlewis42/myshell/core/history"
	"github.com/josephlewis42/myshell/core/jobs"
	"github.com/josephlewis42/myshell/core/logger"
	"github.com/josephlewis42/myshell/core/process"
	"github.com/josephlewis42/myshell/core/shell"
	"github.com/josephlewis42/myshell/core/vars"
	"github.com/spf13/afero"
	"k8s.io/klog/klogr"
)

// Name is used as the prefix of every error message.
const Name = "myshell"

// Shell is one interactive session.
type Shell struct {
	Config       *config.Configuration
	Vars         *vars.Store
	History      *history.Ring
	Jobs         *jobs.Tracker
	Reaper       *process.Reaper
	Orchestrator *process.Orchestrator
	Readline     *readline.Instance
	Events       *logger.SessionLogger
	Log          logr.Logger

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	colors ColorPrinter
	parser *shell.Parser
	// input is paused while foreground lines run, nil outside RunInteractive.
	input *terminalInput

	lastStatus int
	// out replaces Stdout while a built-in runs with redirected output.
	out io.Writer

	// Set to true to quit the shell
	Quit bool
	// ExitStatus is the status requested by exit.
	ExitStatus int
}

var _ shell.Env = (*Shell)(nil)
var _ shell.Executor = (*Shell)(nil)

// Option configures a Shell.
type Option func(s *Shell)

// Streams sets the standard streams of the shell and everything it runs.
func Streams(stdin, stdout, stderr *os.File) Option {
	return func(s *Shell) {
		s.Stdin, s.Stdout, s.Stderr = stdin, stdout, stderr
	}
}

// EventLogger records session events to l.
func EventLogger(l *logger.Logger) Option {
	return func(s *Shell) {
		s.Events = l.NewSession()
	}
}

// Logger sets the diagnostic logger.
func Logger(log logr.Logger) Option {
	return func(s *Shell) {
		s.Log = log
	}
}

// NewShell creates a session using cfg.
func NewShell(cfg *config.Configuration, opts ...Option) (*Shell, error) {
	s := &Shell{
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.Log == nil {
		s.Log = klogr.New()
	}
	if s.Events == nil {
		s.Events = logger.NewNopLogger().Sessionless()
	}

	s.Vars = vars.NewStoreFromList(cfg.Environ())
	s.History = history.NewRing(cfg.HistorySize)
	s.Jobs = jobs.NewTracker()
	s.Reaper = process.NewReaper(s.Log.WithName("reaper"))

	s.Orchestrator = process.NewOrchestrator(s.Jobs, s.Reaper, s.Log.WithName("orchestrator"))
	s.Orchestrator.Stdin = s.Stdin
	s.Orchestrator.Stdout = s.Stdout
	s.Orchestrator.Stderr = s.Stderr
	s.Orchestrator.Name = Name

	s.colors = ColorPrinter{Mode: cfg.Color}
	s.parser = &shell.Parser{Env: s, Exec: s}

	if fsys, path, err := cfg.HistoryPath(); err == nil {
		if err := s.History.Load(fsys, path); err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
	}

	return s, nil
}

// LookupVar implements shell.Env.
func (s *Shell) LookupVar(name string) (string, bool) {
	return s.Vars.Get(name)
}

// LastStatus implements shell.Env.
func (s *Shell) LastStatus() int {
	return s.lastStatus
}

// Status is the status the shell process exits with: the argument to exit
// if it ran, otherwise the status of the last foreground pipeline.
func (s *Shell) Status() int {
	if s.Quit {
		return s.ExitStatus
	}
	return s.lastStatus
}

func (s *Shell) stdout() io.Writer {
	if s.out != nil {
		return s.out
	}
	return s.Stdout
}

func (s *Shell) stderr() io.Writer {
	return s.Stderr
}

// errorf prints a message prefixed with the shell's name to stderr.
func (s *Shell) errorf(format string, a ...interface{}) {
	prefix := s.colors.Sprintf(ColorBoldRed, "%s:", Name)
	fmt.Fprintf(s.stderr(), "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

func (s *Shell) prompt() string {
	return s.colors.Sprintf(ColorBoldGreen, "%s", s.Config.Prompt)
}

func (s *Shell) record(event logger.Event) {
	if err := s.Events.Record(event); err != nil {
		s.Log.Error(err, "recording event", "type", event.EventType())
	}
}

// ContinuationPrompt is shown while the lines of an if block are read.
const ContinuationPrompt = "> "

// lineReader is the part of the line editor the read loop uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

var _ lineReader = (*readline.Instance)(nil)

// RunInteractive reads and runs lines until EOF or exit, returning the
// shell's exit status.
func (s *Shell) RunInteractive() int {
	var stdin io.ReadCloser
	if input, err := newTerminalInput(s.Stdin); err == nil {
		s.input = input
		stdin = input
	} else {
		s.Log.Error(err, "children may lose typed input")
		stdin = readline.NewCancelableStdin(s.Stdin)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryLimit:    s.Config.HistorySize,
		AutoComplete:    &FilenameCompleter{Fs: afero.NewOsFs()},
		InterruptPrompt: "^C",
		Stdin:           stdin,
		Stdout:          s.Stdout,
		Stderr:          s.Stderr,
	})
	if err != nil {
		stdin.Close()
		s.errorf("%v", err)
		return process.StatusFailure
	}
	s.Readline = rl
	for _, line := range s.History.List() {
		rl.SaveHistory(line)
	}

	// Interrupts at the prompt are handled by readline. The channel is never
	// read: being notified is what keeps SIGINT from killing the shell while
	// a child runs. signal.Ignore would be inherited by the children.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	s.Reaper.Start()

	return s.readLoop(rl)
}

func (s *Shell) readLoop(rl lineReader) int {
	for !s.Quit {
		line, err := s.readInput(rl)

		switch {
		case err == io.EOF:
			fmt.Fprintln(s.Stdout, "exit")
			return s.lastStatus

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			s.Log.Error(err, "readline")
			continue

		default:
			s.runForeground(line)
		}
	}
	return s.ExitStatus
}

// readInput reads one line, or when the line opens an if block, every line
// up to the one holding its fi joined by newlines.
func (s *Shell) readInput(rl lineReader) (string, error) {
	line, err := rl.Readline()
	if err != nil || !opensIfBlock(line) {
		return line, err
	}

	rl.SetPrompt(ContinuationPrompt)
	defer rl.SetPrompt(s.prompt())

	block := []string{line}
	for !hasWord(line, "fi") {
		line, err = rl.Readline()
		if err == io.EOF {
			s.errorf("syntax error: unexpected end of file")
			return "", err
		}
		if err != nil {
			return "", err
		}
		block = append(block, line)
	}
	return strings.Join(block, "\n"), nil
}

func opensIfBlock(line string) bool {
	words := shell.Fields(line)
	return len(words) > 0 && words[0] == "if"
}

func hasWord(line, word string) bool {
	for _, w := range shell.Fields(line) {
		if w == word {
			return true
		}
	}
	return false
}

// runForeground runs line with the line editor's reads paused, so programs
// reading the terminal see all of its input.
func (s *Shell) runForeground(line string) {
	if s.input != nil {
		s.input.Pause()
		defer s.input.Resume()
	}
	s.RunLine(line)
}

// RunLine handles one line of input: history recall and recording, parsing
// and execution.
func (s *Shell) RunLine(line string) {
	s.collectJobs()

	if strings.TrimSpace(line) == "" {
		return
	}

	if history.IsRecall(line) {
		recalled, err := s.History.Recall(line)
		if err != nil {
			s.errorf("event not found: %s", strings.Fields(line)[0])
			return
		}
		fmt.Fprintln(s.Stdout, recalled)
		line = recalled
	} else {
		s.History.Append(line)
	}

	s.Log.V(1).Info("run line", "line", line)
	g, err := s.parser.Parse(line)
	if err != nil {
		var syntaxErr *shell.SyntaxError
		if errors.As(err, &syntaxErr) {
			s.record(&logger.SyntaxError{Line: line, Message: syntaxErr.Msg})
		}
		s.errorf("%v", err)
		return
	}

	s.Execute(g)
}

// Execute runs every pipeline of g in order. It implements shell.Executor.
func (s *Shell) Execute(g *shell.Graph) {
	for _, p := range g.Chain {
		if s.Quit {
			return
		}
		s.runPipeline(g, p)
	}
}

func (s *Shell) runPipeline(g *shell.Graph, p shell.Pipeline) {
	stages := g.Stages(p)
	if len(stages) == 1 {
		if status, ok := s.dispatchBuiltin(stages[0]); ok {
			s.finishForeground(p.Text, status)
			return
		}
	}

	res := s.Orchestrator.Run(g, p)
	for _, name := range res.NotFound {
		s.record(&logger.UnknownCommand{Command: []string{name}, Status: process.StatusNotFound})
	}
	for _, launch := range res.Launched {
		s.record(&logger.RunCommand{Command: launch.Args, ResolvedPath: launch.Path})
	}

	if g.Background(p) {
		if res.Job != nil {
			s.record(&logger.JobStarted{JobID: res.Job.ID, PID: res.Job.PID, Text: res.Job.Text})
		}
		return
	}

	s.finishForeground(p.Text, res.Status)
}

func (s *Shell) finishForeground(text string, status int) {
	s.lastStatus = status
	s.record(&logger.CommandExit{Text: text, Status: status})
	s.collectJobs()
}

// collectJobs marks background jobs whose processes were reaped as done.
func (s *Shell) collectJobs() {
	for _, exit := range s.Reaper.Reap() {
		if s.Jobs.Finish(exit.PID) {
			s.Log.V(1).Info("job done", "pid", exit.PID, "status", exit.Status)
		}
	}
}

// Close persists history and releases the session's resources.
func (s *Shell) Close() error {
	s.Reaper.Stop()
	s.collectJobs()
	s.Jobs.Clear()

	var err error
	if fsys, path, pathErr := s.Config.HistoryPath(); pathErr == nil {
		err = s.History.Save(fsys, path)
	}

	if s.Readline != nil {
		if closeErr := s.Readline.Close(); err == nil {
			err = closeErr
		}
		s.Readline = nil
	}
	if s.input != nil {
		s.input.Close()
		s.input = nil
	}
	return err
}
