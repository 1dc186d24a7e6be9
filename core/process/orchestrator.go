package process

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/go-logr/logr"
	"github.com/josephlewis42/myshell/core/jobs"
	"github.com/josephlewis42/myshell/core/shell"
	"k8s.io/klog/klogr"
)

// DefaultName prefixes error messages written by the orchestrator.
const DefaultName = "myshell"

// Orchestrator runs pipelines as processes.
type Orchestrator struct {
	// Standard streams handed to the first and last stages.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Jobs registers background pipelines.
	Jobs *jobs.Tracker
	// Reaper collects every started process that Run does not wait for.
	Reaper *Reaper
	// Name prefixes error messages.
	Name string
	Log  logr.Logger
}

// NewOrchestrator creates an Orchestrator connected to the process's own
// standard streams.
func NewOrchestrator(tracker *jobs.Tracker, reaper *Reaper, log logr.Logger) *Orchestrator {
	if log == nil {
		log = klogr.New()
	}
	return &Orchestrator{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Jobs:   tracker,
		Reaper: reaper,
		Name:   DefaultName,
		Log:    log,
	}
}

// Result describes one run of a pipeline.
type Result struct {
	// Status is the exit status of the final stage. It is only meaningful for
	// foreground pipelines.
	Status int
	// Job is set when a background pipeline was registered.
	Job *jobs.Job
	// PIDs lists every started process in stage order.
	PIDs []int
	// Launched describes the started processes, parallel to PIDs.
	Launched []Launch
	// NotFound lists programs that could not be located.
	NotFound []string
	// Abandoned is set when a resource failure stopped the pipeline early.
	Abandoned bool
}

// Launch describes a started stage.
type Launch struct {
	PID  int
	Path string
	Args []string
}

// Run launches every stage of p and, unless p runs in the background, waits
// for its final stage.
func (o *Orchestrator) Run(g *shell.Graph, p shell.Pipeline) Result {
	var (
		res        Result
		input      *os.File
		waitFor    *exec.Cmd
		unwaited   []*exec.Cmd
		pgid       int
		stages     = g.Stages(p)
		background = g.Background(p)
	)

	for i, stage := range stages {
		last := i == len(stages)-1

		var next, output *os.File
		if !last {
			r, w, err := os.Pipe()
			if err != nil {
				o.errorf("pipe error: %v", err)
				res.Status = StatusFailure
				res.Abandoned = true
				break
			}
			next, output = r, w
		}

		cmd, status, err := o.start(stage, input, output, background, pgid)

		// The children hold their own copies of the pipe ends now.
		closeFile(output)
		closeFile(input)
		input = next

		if err != nil {
			res.Status = StatusFailure
			res.Abandoned = true
			break
		}

		if cmd == nil {
			if status == StatusNotFound {
				res.NotFound = append(res.NotFound, stage.Args[0])
			}
			if last {
				res.Status = status
			}
			continue
		}

		pid := cmd.Process.Pid
		res.PIDs = append(res.PIDs, pid)
		res.Launched = append(res.Launched, Launch{PID: pid, Path: cmd.Path, Args: stage.Args})
		if background && pgid == 0 {
			pgid = pid
		}

		switch {
		case last && !background:
			waitFor = cmd
			continue
		case last && o.Jobs != nil:
			res.Job = o.Jobs.Add(pid, p.Text, true)
			fmt.Fprintf(o.Stdout, "[%d] %d\n", res.Job.ID, pid)
		}
		unwaited = append(unwaited, cmd)
	}
	closeFile(input)

	// Released only once every stage has started, so a collected group
	// leader cannot take the process group away from later stages.
	for _, cmd := range unwaited {
		o.release(cmd)
	}

	if waitFor != nil {
		err := waitFor.Wait()
		res.Status = exitStatus(waitFor.ProcessState, err)
		o.Log.V(2).Info("foreground exit", "pid", res.PIDs[len(res.PIDs)-1], "status", res.Status)
	}

	return res
}

// start launches one stage. A nil command with a nil error means the stage
// was skipped with the returned status.
func (o *Orchestrator) start(stage *shell.Command, stdin, stdout *os.File, background bool, pgid int) (*exec.Cmd, int, error) {
	if stage.Empty() {
		return nil, StatusSuccess, nil
	}

	name := stage.Args[0]
	path, err := exec.LookPath(name)
	if err != nil && !errors.Is(err, exec.ErrDot) {
		o.errorf("%s: command not found", name)
		return nil, StatusNotFound, nil
	}

	if stdin == nil {
		stdin = o.Stdin
	}
	if stdout == nil {
		stdout = o.Stdout
	}

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	if stage.InputFile != "" {
		f, err := os.Open(stage.InputFile)
		if err != nil {
			o.errorf("%s: %v", stage.InputFile, pathError(err))
			return nil, StatusFailure, nil
		}
		opened = append(opened, f)
		stdin = f
	}

	if stage.OutputFile != "" {
		f, err := os.OpenFile(stage.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			o.errorf("%s: %v", stage.OutputFile, pathError(err))
			return nil, StatusFailure, nil
		}
		opened = append(opened, f)
		stdout = f
	}

	cmd := &exec.Cmd{Path: path, Args: stage.Args}
	if stdin != nil {
		cmd.Stdin = stdin
	}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if o.Stderr != nil {
		cmd.Stderr = o.Stderr
	}
	if background {
		cmd.SysProcAttr = backgroundAttr(pgid)
	}

	if err := cmd.Start(); err != nil {
		o.errorf("%s: %v", name, pathError(err))
		return nil, StatusFailure, fmt.Errorf("starting %q: %w", name, err)
	}

	o.Log.V(2).Info("started", "pid", cmd.Process.Pid, "args", stage.Args, "background", background)
	return cmd, StatusSuccess, nil
}

// release hands a process the orchestrator will not wait for to the reaper.
func (o *Orchestrator) release(cmd *exec.Cmd) {
	if o.Reaper == nil {
		go cmd.Wait()
		return
	}
	o.Reaper.Watch(cmd.Process.Pid)
	cmd.Process.Release()
}

func (o *Orchestrator) errorf(format string, args ...interface{}) {
	if o.Stderr == nil {
		return
	}
	name := o.Name
	if name == "" {
		name = DefaultName
	}
	fmt.Fprintf(o.Stderr, "%s: %s\n", name, fmt.Sprintf(format, args...))
}

// pathError strips the operation and path from err, which are already part
// of the message.
func pathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}
