package output

import (
	"io"

	"github.com/fatih/color"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// TextFormatter prints replies the way they read: strings raw, null as
// "null", arrays as [a, b] and maps as {k: v}. Errors are red and null
// is dark gray when color is on.
type TextFormatter struct {
	errColor  *color.Color
	nullColor *color.Color
}

// NewTextFormatter creates a TextFormatter.
func NewTextFormatter(enabled bool) *TextFormatter {
	f := &TextFormatter{
		errColor:  color.New(color.FgRed),
		nullColor: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{f.errColor, f.nullColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Format writes v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	var err error
	switch {
	case v.IsError():
		_, err = f.errColor.Fprintln(w, v.String())
	case v.IsNull():
		_, err = f.nullColor.Fprintln(w, v.String())
	default:
		_, err = io.WriteString(w, v.String()+"\n")
	}
	return err
}
