package shell

import "strings"

// Executor runs a graph in the foreground, updating the last exit status.
type Executor interface {
	Execute(g *Graph)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(g *Graph)

// Execute implements Executor.
func (f ExecutorFunc) Execute(g *Graph) {
	f(g)
}

// IsIfBlock reports whether text should be handled as a conditional block:
// it spans several lines and contains both "if" and "fi".
//
// The check is textual, so ordinary multi-line input containing words like
// "iffy" and "fifo" also matches.
func IsIfBlock(text string) bool {
	return strings.Contains(text, "\n") && strings.Contains(text, "if") && strings.Contains(text, "fi")
}

type ifState int

const (
	ifWaiting ifState = iota
	ifCondition
	ifThen
	ifElse
	ifDone
)

// EvaluateIf evaluates an "if COND then BODY [else BODY] fi" block.
//
// COND is built and executed through exec as soon as "then" is read, and
// the predicate is env.LastStatus() == 0 afterwards. Only the selected body
// is built into the returned graph; the other body is never parsed. Words
// before "if" and after "fi" are ignored.
func EvaluateIf(block string, env Env, exec Executor) (*Graph, error) {
	var (
		state     = ifWaiting
		buf       []string
		thenText  string
		predicate bool
	)

	out := NewGraph()

	for _, word := range Fields(block) {
		switch {
		case state == ifWaiting:
			if word == "if" {
				state = ifCondition
			}

		case state == ifCondition && word == "then":
			if len(buf) > 0 {
				cond, err := Build(strings.Join(buf, " "), env)
				if err != nil {
					return nil, err
				}
				exec.Execute(cond)
				predicate = env.LastStatus() == 0
			}
			buf = nil
			state = ifThen

		case state == ifThen && word == "else":
			thenText = strings.Join(buf, " ")
			buf = nil
			state = ifElse

		case (state == ifThen || state == ifElse) && word == "fi":
			var selected string
			switch {
			case state == ifThen && predicate:
				selected = strings.Join(buf, " ")
			case state == ifElse && predicate:
				selected = thenText
			case state == ifElse && !predicate:
				selected = strings.Join(buf, " ")
			}

			if selected != "" {
				branch, err := Build(selected, env)
				if err != nil {
					return nil, err
				}
				out.Append(branch)
			}
			state = ifDone

		case state == ifDone:
			// Trailing words are ignored.

		default:
			buf = append(buf, word)
		}
	}

	return out, nil
}
