package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecutor records condition graphs and sets the status that
// conditions "exit" with by program name.
type recordingExecutor struct {
	env      *fakeEnv
	statuses map[string]int
	ran      []string
}

func (r *recordingExecutor) Execute(g *Graph) {
	r.ran = append(r.ran, g.String())
	for _, p := range g.Chain {
		stages := g.Stages(p)
		last := stages[len(stages)-1]
		if len(last.Args) > 0 {
			r.env.status = r.statuses[last.Args[0]]
		}
	}
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		env:      newFakeEnv(),
		statuses: map[string]int{"true": 0, "false": 1},
	}
}

func TestIsIfBlock(t *testing.T) {
	assert.True(t, IsIfBlock("if true\nthen ls\nfi"))
	assert.False(t, IsIfBlock("if true then ls fi"), "single lines are never blocks")
	assert.False(t, IsIfBlock("echo a\necho b"))

	// The trigger is textual: ordinary commands whose words contain "if" and
	// "fi" are routed to the evaluator too.
	assert.True(t, IsIfBlock("echo iffy\ncat fifo"))
}

func TestEvaluateIf(t *testing.T) {
	cases := map[string]struct {
		block string
		want  string
		ran   []string
	}{
		"true-then": {
			block: "if true\nthen\n  echo A\nfi",
			want:  "echo A",
			ran:   []string{"true"},
		},
		"false-no-else": {
			block: "if false\nthen echo A\nfi",
			want:  "",
			ran:   []string{"false"},
		},
		"false-else": {
			block: "if false\nthen echo A\nelse echo B\nfi",
			want:  "echo B",
			ran:   []string{"false"},
		},
		"true-else": {
			block: "if true\nthen echo A\nelse echo B\nfi",
			want:  "echo A",
			ran:   []string{"true"},
		},
		"multi-word-body": {
			block: "if true\nthen\necho A | tr A B ; echo C\nfi",
			want:  "echo A | tr A B; echo C",
			ran:   []string{"true"},
		},
		"condition-pipeline": {
			block: "if ls | false\nthen echo A\nelse echo B\nfi",
			want:  "echo B",
			ran:   []string{"ls | false"},
		},
		"empty-condition": {
			block: "if\nthen echo A\nelse echo B\nfi",
			want:  "echo B",
			ran:   nil,
		},
		"missing-fi": {
			block: "if true\nthen echo A\n",
			want:  "",
			ran:   []string{"true"},
		},
		"words-outside-ignored": {
			block: "junk if true\nthen echo A\nfi echo after",
			want:  "echo A",
			ran:   []string{"true"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			exec := newRecordingExecutor()
			g, err := EvaluateIf(tc.block, exec.env, exec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.String())
			assert.Equal(t, tc.ran, exec.ran)
		})
	}
}

func TestEvaluateIf_UntakenBranchNeverBuilt(t *testing.T) {
	exec := newRecordingExecutor()

	// The untaken branch holds a syntax error, which would surface if it was
	// parsed.
	g, err := EvaluateIf("if false\nthen =bad\nelse echo B\nfi", exec.env, exec)
	require.NoError(t, err)
	assert.Equal(t, "echo B", g.String())

	_, err = EvaluateIf("if true\nthen =bad\nelse echo B\nfi", exec.env, exec)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestEvaluateIf_BranchSeesConditionStatus(t *testing.T) {
	exec := newRecordingExecutor()
	exec.statuses["check"] = 4

	g, err := EvaluateIf("if check\nthen echo ok\nelse echo $?\nfi", exec.env, exec)
	require.NoError(t, err)
	assert.Equal(t, "echo 4", g.String())
}
