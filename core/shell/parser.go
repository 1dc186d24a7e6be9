package shell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports input that was rejected without running anything.
type SyntaxError struct {
	// Word is the offending word.
	Word string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parser builds command graphs, running conditional blocks through Exec.
type Parser struct {
	Env  Env
	Exec Executor
}

// Parse builds the graph for line. Conditional blocks are evaluated when an
// Executor is configured; otherwise they are parsed as ordinary text.
func (p *Parser) Parse(line string) (*Graph, error) {
	if p.Exec != nil && IsIfBlock(line) {
		return EvaluateIf(line, p.Env, p.Exec)
	}
	return Build(line, p.Env)
}

// Build turns one line into a chain of pipelines.
func Build(line string, env Env) (*Graph, error) {
	g := NewGraph()

	for _, segment := range splitNonEmpty(line, ";") {
		segment = strings.TrimFunc(segment, isWhitespace)
		if segment == "" {
			continue
		}
		if err := buildSegment(g, segment, env); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func buildSegment(g *Graph, segment string, env Env) error {
	background := false
	if strings.HasSuffix(segment, "&") {
		background = true
		segment = strings.TrimRightFunc(strings.TrimSuffix(segment, "&"), isWhitespace)
	}

	pipeline := Pipeline{Text: segment}
	stageTexts := splitNonEmpty(segment, "|")
	if len(stageTexts) == 0 {
		// A lone "&" still occupies a chain link; it runs as a no-op.
		stageTexts = []string{""}
	}

	for _, text := range stageTexts {
		cmd, err := buildStage(text, env)
		if err != nil {
			return err
		}
		pipeline.Stages = append(pipeline.Stages, g.Add(cmd))
	}

	last := pipeline.Stages[len(pipeline.Stages)-1]
	g.Command(last).Background = background
	g.Chain = append(g.Chain, pipeline)
	return nil
}

func buildStage(text string, env Env) (Command, error) {
	var cmd Command

	tokens := Tokenize(text)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case RedirectIn, RedirectOut:
			// A redirection without a file name is dropped.
			if i+1 >= len(tokens) {
				continue
			}
			i++
			if tok.Kind == RedirectIn {
				cmd.InputFile = tokens[i].Text
			} else {
				cmd.OutputFile = tokens[i].Text
			}
		default:
			cmd.Args = append(cmd.Args, Expand(tok.Text, env))
		}
	}

	if len(cmd.Args) > 0 && strings.HasPrefix(cmd.Args[0], "=") {
		return Command{}, &SyntaxError{Word: cmd.Args[0], Msg: "variable name missing"}
	}

	return cmd, nil
}

// splitNonEmpty splits s around sep, dropping empty pieces the way strtok
// does. Whitespace-only pieces are kept.
func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, piece := range strings.Split(s, sep) {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// SplitAssignment splits a NAME=value word. ok is false when word is not an
// assignment.
func SplitAssignment(word string) (name, value string, ok bool) {
	idx := strings.IndexByte(word, '=')
	if idx < 0 {
		return "", "", false
	}
	return word[:idx], word[idx+1:], true
}
