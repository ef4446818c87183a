package virtext

import (
	"fmt"
	"unicode"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenPunct
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "Ident"
	case TokenInt:
		return "Int"
	case TokenPunct:
		return "Punct"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// punctuation lists the operator and delimiter tokens, longest first.
var punctuation = []string{
	"==>",
	"::", "==", "!=", "<=", ">=", "&&", "||",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", "?",
	"!", "-", "+", "*", "/", "%", "<", ">",
}

// Lex performs lexical analysis on an expression and returns its tokens,
// terminated by an EOF token.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	i := 0

	for i < len(input) {
		c := input[i]

		if isWhitespace(c) {
			if c == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
			continue
		}

		start := i
		switch {
		case isIdentifierStart(c):
			for i < len(input) && isIdentifierChar(input[i]) {
				i++
			}
			tokens = append(tokens, Token{Type: TokenIdent, Value: input[start:i], Line: line, Col: col})
		case isDigit(c):
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			if i < len(input) && isIdentifierStart(input[i]) {
				return nil, fmt.Errorf("line %d col %d: malformed number %q", line, col, input[start:i+1])
			}
			tokens = append(tokens, Token{Type: TokenInt, Value: input[start:i], Line: line, Col: col})
		default:
			p := matchPunct(input[i:])
			if p == "" {
				return nil, fmt.Errorf("line %d col %d: unexpected character %q", line, col, c)
			}
			i += len(p)
			tokens = append(tokens, Token{Type: TokenPunct, Value: p, Line: line, Col: col})
		}
		col += i - start
	}

	tokens = append(tokens, Token{
		Type: TokenEOF,
		Line: line,
		Col:  col,
	})
	return tokens, nil
}

func matchPunct(s string) string {
	for _, p := range punctuation {
		if len(s) >= len(p) && s[:len(p)] == p {
			return p
		}
	}
	return ""
}

func isIdentifierStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

// Renamed labels carry a '$' suffix.
func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c) || c == '$'
}

func isWhitespace(c byte) bool {
	return unicode.IsSpace(rune(c))
}

func isDigit(c byte) bool {
	return unicode.IsDigit(rune(c))
}
