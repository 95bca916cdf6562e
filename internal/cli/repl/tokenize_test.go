package repl

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \t ", nil},
		{"single", "GET", []string{"GET"}},
		{"two", "GET key", []string{"GET", "key"}},
		{"three", "SET key value", []string{"SET", "key", "value"}},
		{"extra spaces", "  SET   key  value ", []string{"SET", "key", "value"}},
		{"double quoted", `SET key "value with spaces"`, []string{"SET", "key", "value with spaces"}},
		{"single quoted", `SET key 'value with spaces'`, []string{"SET", "key", "value with spaces"}},
		{"escaped quotes", `SET key 'value with \'quotes\''`, []string{"SET", "key", "value with 'quotes'"}},
		{"escaped backslash", `ECHO "a\\b"`, []string{"ECHO", `a\b`}},
		{"other quote kept", `ECHO "it's"`, []string{"ECHO", "it's"}},
		{"empty quoted", `SET k ""`, []string{"SET", "k", ""}},
		{"unterminated", `ECHO "abc def`, []string{"ECHO", "abc def"}},
		{"quote inside word", `ECHO a"b`, []string{"ECHO", `a"b`}},
		{"adjacent quoted", `ECHO "a""b"`, []string{"ECHO", "a", "b"}},
		{"unicode", "SET clé 'été'", []string{"SET", "clé", "été"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
