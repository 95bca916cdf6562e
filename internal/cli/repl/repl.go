package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MattEstHaut/RediSharp/internal/cli/output"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// Prompt is printed before each line is read.
const Prompt = "> "

// Doer sends a command to the server.
type Doer interface {
	Do(ctx context.Context, args ...string) (resp.Value, error)
}

// REPL reads commands, sends them and prints the replies.
type REPL struct {
	doer      Doer
	input     io.Reader
	output    io.Writer
	errOutput io.Writer
	formatter output.Formatter
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
		r.errOutput = errOut
	}
}

// WithFormatter sets how replies are printed.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) { r.formatter = f }
}

// WithHistory records entered lines in h.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a REPL that sends commands through doer.
func New(doer Doer, opts ...Option) *REPL {
	r := &REPL{
		doer:      doer,
		input:     os.Stdin,
		output:    os.Stdout,
		errOutput: os.Stderr,
		formatter: output.NewTextFormatter(false),
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until end of input, an exit command or ctx ends. Lines that
// tokenize to nothing are skipped. A failed round trip is reported and
// the loop goes on.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.errOutput, "warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.errOutput, "warning: cannot save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil
		line = strings.TrimRight(line, "\r\n")

		if strings.TrimSpace(line) != "" {
			if done := r.handle(ctx, line); done {
				return nil
			}
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// handle runs one line and reports whether the REPL should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return false
	}
	r.history.Add(strings.TrimSpace(line))

	if len(tokens) == 1 {
		switch strings.ToLower(tokens[0]) {
		case cmdExit, cmdQuit:
			return true
		case cmdHelp:
			fmt.Fprintf(r.output, "Commands: %s\n", strings.Join(r.completer.Commands(), " "))
			return false
		}
	}

	reply, err := r.doer.Do(ctx, tokens...)
	if err != nil {
		fmt.Fprintf(r.errOutput, "Error: %v\n", err)
		return false
	}
	if err := r.formatter.Format(r.output, reply); err != nil {
		fmt.Fprintf(r.errOutput, "Error: %v\n", err)
	}
	return false
}
