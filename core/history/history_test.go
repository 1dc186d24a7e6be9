package history

import (
	"fmt"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleRing_Print() {
	ring := NewRing(10)
	ring.Append("ls -l")
	ring.Append("")
	ring.Append("echo hi | cat")

	ring.Print(os.Stdout)

	// Output:
	//    1  ls -l
	//    2  echo hi | cat
}

func TestRing_DropsOldest(t *testing.T) {
	ring := NewRing(3)
	for i := 1; i <= 5; i++ {
		ring.Append(fmt.Sprintf("cmd %d", i))
	}

	assert.Equal(t, []string{"cmd 3", "cmd 4", "cmd 5"}, ring.List())

	first, err := ring.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "cmd 3", first)
}

func TestRing_Recall(t *testing.T) {
	ring := NewRing(DefaultSize)
	ring.Append("echo one")
	ring.Append("echo two")

	cases := map[string]struct {
		line    string
		want    string
		wantErr bool
	}{
		"first":       {line: "!1", want: "echo one"},
		"second":      {line: "!2 ignored", want: "echo two"},
		"zero":        {line: "!0", wantErr: true},
		"past-end":    {line: "!3", wantErr: true},
		"non-numeric": {line: "!abc", wantErr: true},
		"not-recall":  {line: "echo", wantErr: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := ring.Recall(tc.line)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrEventNotFound)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRing_SaveLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()

	ring := NewRing(DefaultSize)
	ring.Append("echo a")
	ring.Append("if true\nthen echo b\nfi")
	require.NoError(t, ring.Save(fsys, "history"))

	loaded := NewRing(DefaultSize)
	require.NoError(t, loaded.Load(fsys, "history"))
	assert.Equal(t, []string{"echo a", "if true then echo b fi"}, loaded.List())

	missing := NewRing(DefaultSize)
	assert.NoError(t, missing.Load(fsys, "does-not-exist"))
	assert.Equal(t, 0, missing.Len())
}
