package repl

import "strings"

// Tokenize splits a command line into arguments.
//
// Arguments are separated by spaces or tabs. An argument that starts with
// a single or double quote runs to the matching quote; inside it a
// backslash takes the next character literally. An unterminated quote
// runs to the end of the line. Quotes in the middle of a bare word are
// kept as-is.
func Tokenize(line string) []string {
	var tokens []string
	runes := []rune(line)

	for i := 0; i < len(runes); {
		switch c := runes[i]; {
		case isBlank(c):
			i++
		case c == '"' || c == '\'':
			tok, n := readQuoted(runes[i:])
			tokens = append(tokens, tok)
			i += n
		default:
			start := i
			for i < len(runes) && !isBlank(runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		}
	}
	return tokens
}

// readQuoted reads a quoted argument and returns it with the number of
// runes consumed, closing quote included.
func readQuoted(runes []rune) (string, int) {
	var sb strings.Builder
	quote := runes[0]
	escaped := false

	i := 1
	for ; i < len(runes); i++ {
		c := runes[i]
		switch {
		case escaped:
			sb.WriteRune(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == quote:
			return sb.String(), i + 1
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String(), i
}

func isBlank(c rune) bool {
	return c == ' ' || c == '\t'
}
