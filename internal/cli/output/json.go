package output

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// JSONFormatter prints replies as JSON. Null is null, errors become
// {"error": message} and map entries keep their wire order, keyed by the
// text form of the key.
type JSONFormatter struct {
	Indent string
}

// Format writes v as one JSON document.
func (f *JSONFormatter) Format(w io.Writer, v resp.Value) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(jsonValue{v})
}

type jsonValue struct {
	resp.Value
}

func (j jsonValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, j.Value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v resp.Value) error {
	switch v.Kind() {
	case resp.KindNull:
		buf.WriteString("null")
	case resp.KindSimpleString, resp.KindBulkString:
		return writeJSONString(buf, v.Str())
	case resp.KindError:
		buf.WriteString(`{"error":`)
		if err := writeJSONString(buf, v.Str()); err != nil {
			return err
		}
		buf.WriteByte('}')
	case resp.KindInteger:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case resp.KindBoolean:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case resp.KindArray:
		buf.WriteByte('[')
		for i, e := range v.Elems() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case resp.KindMap:
		buf.WriteByte('{')
		for i, p := range v.Pairs() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, p.Key.String()); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
