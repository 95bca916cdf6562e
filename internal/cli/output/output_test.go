package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

var sample = resp.Map(
	resp.Pair{Key: resp.BulkString("b"), Value: resp.Integer(2)},
	resp.Pair{Key: resp.BulkString("a"), Value: resp.Array(resp.BulkString("x"), resp.Null(), resp.Boolean(true))},
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"table", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"simple", resp.SimpleString("OK"), "OK\n"},
		{"bulk", resp.BulkString("hello world"), "hello world\n"},
		{"null", resp.Null(), "null\n"},
		{"error", resp.Error("Wrong type"), "Wrong type\n"},
		{"integer", resp.Integer(-3), "-3\n"},
		{"boolean", resp.Boolean(false), "false\n"},
		{"array", resp.BulkStrings("a", "b"), "[a, b]\n"},
		{"map", sample, "{b: 2, a: [x, null, true]}\n"},
	}
	f := NewTextFormatter(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Format(&buf, tt.v); err != nil {
				t.Fatalf("Format: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.v, buf.String(), tt.want)
			}
		})
	}
}

func TestTextFormatter_Color(t *testing.T) {
	f := NewTextFormatter(true)

	var buf bytes.Buffer
	if err := f.Format(&buf, resp.Error("boom")); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[31m") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("error output %q is not red", buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, resp.Null()); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[90m") {
		t.Errorf("null output %q is not dark gray", buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, resp.SimpleString("OK")); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != "OK\n" {
		t.Errorf("plain output %q should not be colored", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"null", resp.Null(), "null\n"},
		{"string", resp.BulkString(`say "hi"`), `"say \"hi\""` + "\n"},
		{"error", resp.Error("Wrong type"), `{"error":"Wrong type"}` + "\n"},
		{"integer", resp.Integer(42), "42\n"},
		{"map keeps order", sample, `{"b":2,"a":["x",null,true]}` + "\n"},
	}
	f := &JSONFormatter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Format(&buf, tt.v); err != nil {
				t.Fatalf("Format: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter_Indent(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, false)
	if err := f.Format(&buf, resp.BulkStrings("a")); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != "[\n  \"a\"\n]\n" {
		t.Errorf("Format = %q", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"null", resp.Null(), "null\n"},
		{"string", resp.BulkString("hello"), "hello\n"},
		{"numeric string is quoted", resp.BulkString("12"), "\"12\"\n"},
		{"integer", resp.Integer(12), "12\n"},
		{"error", resp.Error("Wrong type"), "error: Wrong type\n"},
		{"map keeps order", sample, "b: 2\na:\n  - x\n  - null\n  - true\n"},
	}
	f := &YAMLFormatter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Format(&buf, tt.v); err != nil {
				t.Fatalf("Format: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("NAME", "VALUE")
	tbl.AddRow("requests", 100)
	tbl.AddRow("ops/sec", 12.5)

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "NAME      VALUE\nrequests  100\nops/sec   12.5\n"
	if buf.String() != want {
		t.Errorf("Render = %q, want %q", buf.String(), want)
	}
}
