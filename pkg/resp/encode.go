package resp

import (
	"bufio"
	"io"
	"strconv"
)

const crlf = "\r\n"

// Encode returns the wire form of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire form of v to dst and returns the extended
// buffer.
func AppendValue(dst []byte, v Value) []byte {
	switch v.kind {
	case KindSimpleString, KindError:
		dst = append(dst, v.kind.Tag())
		dst = appendLine(dst, v.str)
		return append(dst, crlf...)
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.str...)
		return append(dst, crlf...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.num, 10)
		return append(dst, crlf...)
	case KindBoolean:
		if v.flag {
			return append(dst, "#t\r\n"...)
		}
		return append(dst, "#f\r\n"...)
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.elems)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.elems {
			dst = AppendValue(dst, e)
		}
		return dst
	case KindMap:
		dst = append(dst, '%')
		dst = strconv.AppendInt(dst, int64(len(v.pairs)), 10)
		dst = append(dst, crlf...)
		for _, p := range v.pairs {
			dst = AppendValue(dst, p.Key)
			dst = AppendValue(dst, p.Value)
		}
		return dst
	default:
		return append(dst, "_\r\n"...)
	}
}

// appendLine appends s with CR and LF replaced by spaces, so a simple
// string or error always occupies exactly one line.
func appendLine(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\r', '\n':
			dst = append(dst, ' ')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// WriteValue writes the wire form of v to w. Callers holding a
// *bufio.Writer still need to Flush.
func WriteValue(w io.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

// Writer encodes values onto a buffered stream.
type Writer struct {
	bw  *bufio.Writer
	buf []byte
}

// NewWriter wraps w. If w is already a *bufio.Writer it is used directly.
func NewWriter(w io.Writer) *Writer {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Writer{bw: bw}
}

// Write buffers the encoding of v.
func (w *Writer) Write(v Value) error {
	w.buf = AppendValue(w.buf[:0], v)
	_, err := w.bw.Write(w.buf)
	return err
}

// Flush writes any buffered data to the underlying stream.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
