package commands

import (
	"path/filepath"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"
)

// FilenameCompleter completes the word under the cursor as a path.
type FilenameCompleter struct {
	Fs afero.Fs
}

// Do implements readline.AutoCompleter.
func (c *FilenameCompleter) Do(line []rune, pos int) ([][]rune, int) {
	word := currentWord(string(line[:pos]))

	var out [][]rune
	for _, match := range c.Complete(word) {
		out = append(out, []rune(strings.TrimPrefix(match, word)))
	}
	return out, len([]rune(word))
}

// Complete lists the paths that start with word. Directories end in a slash.
func (c *FilenameCompleter) Complete(word string) []string {
	dir, prefix := filepath.Split(word)

	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}

	entries, err := afero.ReadDir(c.Fs, searchDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		// Hidden files are only offered when asked for.
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		candidate := dir + name
		if entry.IsDir() {
			candidate += "/"
		}
		out = append(out, candidate)
	}
	return out
}

// currentWord returns the word being typed at the end of head.
func currentWord(head string) string {
	if head == "" || strings.ContainsAny(head[len(head)-1:], " \t") {
		return ""
	}

	words, err := shlex.Split(head, true)
	if err != nil || len(words) == 0 {
		// Unbalanced quotes; fall back to plain whitespace.
		words = strings.Fields(head)
	}
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
