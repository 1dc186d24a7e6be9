package shell

import "strings"

// Handle indexes a Command within a Graph.
type Handle int

// Command is a single pipeline stage.
type Command struct {
	// Args holds the program name followed by its arguments. It is empty for
	// a stage that consisted only of redirections or whitespace.
	Args []string
	// InputFile, if set, replaces the stage's standard input.
	InputFile string
	// OutputFile, if set, is truncated and replaces the stage's standard
	// output.
	OutputFile string
	// Background is only set on the final stage of a pipeline.
	Background bool
}

// Empty reports whether the stage has no program to run.
func (c *Command) Empty() bool {
	return len(c.Args) == 0
}

// Pipeline is an ordered set of stages joined by pipes.
type Pipeline struct {
	Stages []Handle
	// Text is the source text of the pipeline, used when displaying jobs.
	Text string
}

// Graph owns every Command built from one input. Chain lists the pipelines
// in the order they run.
type Graph struct {
	commands []Command
	Chain    []Pipeline
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add stores cmd in the arena.
func (g *Graph) Add(cmd Command) Handle {
	g.commands = append(g.commands, cmd)
	return Handle(len(g.commands) - 1)
}

// Command returns the stage behind h.
func (g *Graph) Command(h Handle) *Command {
	return &g.commands[h]
}

// Len returns the number of commands in the arena.
func (g *Graph) Len() int {
	return len(g.commands)
}

// Stages resolves the handles of p.
func (g *Graph) Stages(p Pipeline) []*Command {
	out := make([]*Command, 0, len(p.Stages))
	for _, h := range p.Stages {
		out = append(out, g.Command(h))
	}
	return out
}

// Background reports whether p runs without the shell waiting for it.
func (g *Graph) Background(p Pipeline) bool {
	if len(p.Stages) == 0 {
		return false
	}
	return g.Command(p.Stages[len(p.Stages)-1]).Background
}

// Append moves the chain of other onto the end of g.
func (g *Graph) Append(other *Graph) {
	if other == nil {
		return
	}
	offset := Handle(len(g.commands))
	g.commands = append(g.commands, other.commands...)
	for _, p := range other.Chain {
		stages := make([]Handle, len(p.Stages))
		for i, h := range p.Stages {
			stages[i] = h + offset
		}
		g.Chain = append(g.Chain, Pipeline{Stages: stages, Text: p.Text})
	}
}

// String renders g back into single-line source form.
func (g *Graph) String() string {
	var segments []string
	for _, p := range g.Chain {
		var stages []string
		for _, cmd := range g.Stages(p) {
			words := append([]string(nil), cmd.Args...)
			if cmd.InputFile != "" {
				words = append(words, "<", cmd.InputFile)
			}
			if cmd.OutputFile != "" {
				words = append(words, ">", cmd.OutputFile)
			}
			stages = append(stages, strings.Join(words, " "))
		}
		text := strings.Join(stages, " | ")
		if g.Background(p) {
			text += " &"
		}
		segments = append(segments, text)
	}
	return strings.Join(segments, "; ")
}
