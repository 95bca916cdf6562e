package repl

import (
	"sort"
	"strings"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
)

// Built-in REPL commands handled without a round trip.
const (
	cmdExit = "exit"
	cmdQuit = "quit"
	cmdHelp = "help"
)

// Completer suggests command names for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the server verbs and the REPL
// built-ins.
func NewCompleter() *Completer {
	var names []string
	for _, v := range command.Verbs() {
		names = append(names, v.String())
	}
	names = append(names, cmdExit, cmdHelp, cmdQuit)
	sort.Strings(names)
	return &Completer{commands: names}
}

// Complete returns the commands starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	upper := strings.ToUpper(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToUpper(cmd), upper) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns every completion candidate in sorted order.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}
