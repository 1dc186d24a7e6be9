package shell

import "strings"

// TokenKind classifies a Token.
type TokenKind int

const (
	// Word is an ordinary argument word.
	Word TokenKind = iota
	// Pipe is a standalone "|".
	Pipe
	// RedirectIn is a standalone "<".
	RedirectIn
	// RedirectOut is a standalone ">".
	RedirectOut
	// Background is a standalone "&".
	Background
	// Sequence is a standalone ";".
	Sequence
)

func (k TokenKind) String() string {
	switch k {
	case Pipe:
		return "|"
	case RedirectIn:
		return "<"
	case RedirectOut:
		return ">"
	case Background:
		return "&"
	case Sequence:
		return ";"
	default:
		return "word"
	}
}

// Token is a single whitespace-delimited unit of input.
type Token struct {
	Kind TokenKind
	Text string
}

// whitespace separates words within a stage.
const whitespace = " \t\r\n\a"

func isWhitespace(r rune) bool {
	return strings.ContainsRune(whitespace, r)
}

// Fields splits text into whitespace-delimited words.
func Fields(text string) []string {
	return strings.FieldsFunc(text, isWhitespace)
}

// Tokenize splits text into tokens. Operators are only recognized when they
// stand alone: "cmd>file" is a single word.
func Tokenize(text string) []Token {
	words := Fields(text)
	out := make([]Token, 0, len(words))
	for _, w := range words {
		out = append(out, Token{Kind: operatorKind(w), Text: w})
	}
	return out
}

func operatorKind(word string) TokenKind {
	switch word {
	case "|":
		return Pipe
	case "<":
		return RedirectIn
	case ">":
		return RedirectOut
	case "&":
		return Background
	case ";":
		return Sequence
	default:
		return Word
	}
}
