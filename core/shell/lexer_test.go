package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		input string
		want  []Token
	}{
		"empty": {input: "   ", want: []Token{}},
		"words": {
			input: "  ls\t-l  /tmp ",
			want:  []Token{{Word, "ls"}, {Word, "-l"}, {Word, "/tmp"}},
		},
		"operators": {
			input: "a < in > out | b & ;",
			want: []Token{
				{Word, "a"}, {RedirectIn, "<"}, {Word, "in"}, {RedirectOut, ">"},
				{Word, "out"}, {Pipe, "|"}, {Word, "b"}, {Background, "&"}, {Sequence, ";"},
			},
		},
		"operator-not-split-without-space": {
			input: "cmd>file",
			want:  []Token{{Word, "cmd>file"}},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.input))
		})
	}
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "|", Pipe.String())
	assert.Equal(t, "word", Word.String())
}
