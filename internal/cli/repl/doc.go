// Package repl is the interactive mode of redisharp-cli.
//
// Each line is split by Tokenize, sent as one command and the reply is
// printed. Lines starting with exit, quit or help are handled locally.
// Entered lines are kept in a history file between sessions.
package repl
