package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

type fakeDoer struct {
	calls [][]string
	reply func(args []string) (resp.Value, error)
}

func (d *fakeDoer) Do(_ context.Context, args ...string) (resp.Value, error) {
	d.calls = append(d.calls, args)
	if d.reply != nil {
		return d.reply(args)
	}
	return resp.SimpleString("OK"), nil
}

func runREPL(t *testing.T, d *fakeDoer, input string, opts ...Option) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out, &errOut)}, opts...)
	if err := New(d, opts...).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), errOut.String()
}

func TestREPL_SendsTokenizedLines(t *testing.T) {
	d := &fakeDoer{}
	out, _ := runREPL(t, d, "SET key 'a b'\nGET key\n")

	want := [][]string{{"SET", "key", "a b"}, {"GET", "key"}}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("calls = %q, want %q", d.calls, want)
	}
	if out != "> OK\n> OK\n> \n" {
		t.Errorf("output = %q", out)
	}
}

func TestREPL_SkipsBlankLines(t *testing.T) {
	d := &fakeDoer{}
	runREPL(t, d, "\n   \n\t\nPING\n")

	if len(d.calls) != 1 || d.calls[0][0] != "PING" {
		t.Errorf("calls = %q, want only PING", d.calls)
	}
}

func TestREPL_LastLineWithoutNewline(t *testing.T) {
	d := &fakeDoer{}
	runREPL(t, d, "PING")

	if len(d.calls) != 1 {
		t.Errorf("calls = %q, want PING", d.calls)
	}
}

func TestREPL_Exit(t *testing.T) {
	for _, word := range []string{"exit", "quit", "EXIT"} {
		t.Run(word, func(t *testing.T) {
			d := &fakeDoer{}
			runREPL(t, d, "PING\n"+word+"\nPING\n")
			if len(d.calls) != 1 {
				t.Errorf("calls = %d, want 1 before %s", len(d.calls), word)
			}
		})
	}
}

func TestREPL_Help(t *testing.T) {
	d := &fakeDoer{}
	out, _ := runREPL(t, d, "help\n")

	if len(d.calls) != 0 {
		t.Errorf("help should not reach the server, calls = %q", d.calls)
	}
	for _, verb := range []string{"GET", "SET", "LOCK", "TAIL"} {
		if !strings.Contains(out, verb) {
			t.Errorf("help output %q lacks %s", out, verb)
		}
	}
}

func TestREPL_TransportErrorContinues(t *testing.T) {
	d := &fakeDoer{reply: func(args []string) (resp.Value, error) {
		if args[0] == "FAIL" {
			return resp.Value{}, errors.New("connection reset")
		}
		return resp.BulkString(args[0]), nil
	}}
	out, errOut := runREPL(t, d, "FAIL\nECHO\n")

	if !strings.Contains(errOut, "connection reset") {
		t.Errorf("stderr = %q, want the transport error", errOut)
	}
	if !strings.Contains(out, "ECHO\n") {
		t.Errorf("stdout = %q, want the second reply", out)
	}
}

func TestREPL_HistoryPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("OLD\n"), 0600); err != nil {
		t.Fatal(err)
	}

	d := &fakeDoer{}
	runREPL(t, d, "GET a\nGET a\n\nexit\n", WithHistory(NewHistory(path)))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(data); got != "OLD\nGET a\nexit\n" {
		t.Errorf("history file = %q", got)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for _, line := range []string{"a", "b", "b", "c", "d"} {
		h.Add(line)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	tests := []struct {
		index int
		want  string
	}{
		{0, "d"},
		{1, "c"},
		{2, "b"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "nope", "history"))
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.Add("PING")
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(h.file)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history mode = %v, want 0600", perm)
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"g", []string{"GET"}},
		{"T", []string{"TAIL", "TTL"}},
		{"un", []string{"UNLOCK"}},
		{"ex", []string{"exit"}},
		{"zz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}
