package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	// ErrProtocol reports malformed or truncated wire data.
	ErrProtocol = errors.New("resp: protocol error")
	// ErrLimitExceeded reports a frame that is well formed but larger than
	// the reader allows.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Limits bounds what a Reader accepts. A zero field means unbounded.
type Limits struct {
	MaxLineLen      int // simple strings, errors and headers, CRLF included
	MaxBulkLen      int
	MaxAggregateLen int // elements of an array or pairs of a map
	MaxDepth        int
}

// DefaultLimits is what the server applies to untrusted peers.
var DefaultLimits = Limits{
	MaxLineLen:      64 * 1024,
	MaxBulkLen:      512 * 1024 * 1024,
	MaxAggregateLen: 1024 * 1024,
	MaxDepth:        32,
}

// Reader decodes values from a buffered stream.
type Reader struct {
	br     *bufio.Reader
	limits Limits
}

// NewReader returns an unbounded Reader over r.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithLimits(r, Limits{})
}

// NewReaderWithLimits returns a Reader over r that enforces limits.
func NewReaderWithLimits(r io.Reader, limits Limits) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, limits: limits}
}

// Decode reads exactly one value from r with no limits applied.
func Decode(r *bufio.Reader) (Value, error) {
	return (&Reader{br: r}).Read()
}

// Read returns the next value. A stream that ends cleanly before the first
// byte of a value yields io.EOF; a stream that ends inside a value yields
// an error wrapping both ErrProtocol and io.ErrUnexpectedEOF.
func (r *Reader) Read() (Value, error) {
	if _, err := r.br.Peek(1); err != nil {
		return Value{}, err
	}
	return r.read(0)
}

func (r *Reader) read(depth int) (Value, error) {
	if r.limits.MaxDepth > 0 && depth > r.limits.MaxDepth {
		return Value{}, fmt.Errorf("%w: nesting depth exceeds limit %d", ErrLimitExceeded, r.limits.MaxDepth)
	}

	b, err := r.br.Peek(1)
	if err != nil {
		return Value{}, unexpected(err)
	}

	switch b[0] {
	case '+', '-', '$', '_', ':', '#', '*', '%':
	default:
		return Value{}, fmt.Errorf("%w: unknown type tag %q", ErrProtocol, b[0])
	}

	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	tag, body := line[0], line[1:]

	switch tag {
	case '+':
		return SimpleString(string(body)), nil
	case '-':
		return Error(string(body)), nil
	case '_':
		if len(body) != 0 {
			return Value{}, fmt.Errorf("%w: unexpected payload after null", ErrProtocol)
		}
		return Null(), nil
	case '#':
		switch string(body) {
		case "t":
			return Boolean(true), nil
		case "f":
			return Boolean(false), nil
		}
		return Value{}, fmt.Errorf("%w: invalid boolean %q", ErrProtocol, body)
	case ':':
		n, err := parseInteger(body)
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case '$':
		n, err := parseSize(body)
		if err != nil {
			return Value{}, err
		}
		if r.limits.MaxBulkLen > 0 && n > int64(r.limits.MaxBulkLen) {
			return Value{}, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, r.limits.MaxBulkLen)
		}
		s, err := r.readBulk(n)
		if err != nil {
			return Value{}, err
		}
		return BulkString(s), nil
	case '*':
		n, err := r.aggregateLen(body)
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, capHint(n))
		for i := int64(0); i < n; i++ {
			e, err := r.read(depth + 1)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Value{kind: KindArray, elems: elems}, nil
	default: // '%'
		n, err := r.aggregateLen(body)
		if err != nil {
			return Value{}, err
		}
		pairs := make([]Pair, 0, capHint(n))
		for i := int64(0); i < n; i++ {
			k, err := r.read(depth + 1)
			if err != nil {
				return Value{}, err
			}
			v, err := r.read(depth + 1)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return Value{kind: KindMap, pairs: pairs}, nil
	}
}

func (r *Reader) aggregateLen(body []byte) (int64, error) {
	n, err := parseSize(body)
	if err != nil {
		return 0, err
	}
	if r.limits.MaxAggregateLen > 0 && n > int64(r.limits.MaxAggregateLen) {
		return 0, fmt.Errorf("%w: aggregate length %d exceeds limit %d", ErrLimitExceeded, n, r.limits.MaxAggregateLen)
	}
	return n, nil
}

// readLine returns one line without its CRLF terminator.
func (r *Reader) readLine() ([]byte, error) {
	var buf []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if r.limits.MaxLineLen > 0 && len(buf) > r.limits.MaxLineLen {
				return nil, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, r.limits.MaxLineLen)
			}
			continue
		}
		return nil, unexpected(err)
	}

	if r.limits.MaxLineLen > 0 && len(buf) > r.limits.MaxLineLen {
		return nil, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, r.limits.MaxLineLen)
	}
	if len(buf) < 3 || buf[len(buf)-2] != '\r' {
		return nil, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return buf[:len(buf)-2], nil
}

const bulkChunk = 64 * 1024

func (r *Reader) readBulk(n int64) (string, error) {
	var payload []byte
	if n <= bulkChunk {
		payload = make([]byte, n+2)
		if _, err := io.ReadFull(r.br, payload); err != nil {
			return "", unexpected(err)
		}
	} else {
		// Grow with the data actually received rather than trusting the header.
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, r.br, n+2); err != nil {
			return "", unexpected(err)
		}
		payload = buf.Bytes()
	}
	if !bytes.HasSuffix(payload, []byte(crlf)) {
		return "", fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return string(payload[:n]), nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrProtocol, io.ErrUnexpectedEOF)
	}
	return err
}

// parseInteger accepts only the form strconv.FormatInt produces, so a
// decoded integer always re-encodes to the same bytes.
func parseInteger(body []byte) (int64, error) {
	n, err := strconv.ParseInt(string(body), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(body) {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, body)
	}
	return n, nil
}

func parseSize(body []byte) (int64, error) {
	n, err := strconv.ParseInt(string(body), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(body) {
		return 0, fmt.Errorf("%w: invalid size %q", ErrProtocol, body)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrProtocol, n)
	}
	return n, nil
}

func capHint(n int64) int {
	if n > 1024 {
		return 1024
	}
	return int(n)
}
