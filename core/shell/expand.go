package shell

import (
	"strconv"
	"strings"
)

// Env supplies the values used during expansion.
type Env interface {
	// LookupVar returns the value of a shell variable.
	LookupVar(name string) (string, bool)
	// LastStatus returns the exit status of the last foreground command.
	LastStatus() int
}

// Expand substitutes $NAME and $? in word. Undefined names expand to nothing
// and a "$" that starts neither a name nor "?" is kept. Substituted values are
// never rescanned.
func Expand(word string, env Env) string {
	if !strings.Contains(word, "$") {
		return word
	}

	var out strings.Builder
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch != '$' {
			out.WriteByte(ch)
			continue
		}

		j := i + 1
		for j < len(word) && isNameByte(word[j]) {
			j++
		}

		switch {
		case j > i+1:
			if val, ok := env.LookupVar(word[i+1 : j]); ok {
				out.WriteString(val)
			}
			i = j - 1
		case j < len(word) && word[j] == '?':
			out.WriteString(strconv.Itoa(env.LastStatus()))
			i = j
		default:
			out.WriteByte('$')
		}
	}
	return out.String()
}

func isNameByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

// IsName reports whether s is a valid variable name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}
