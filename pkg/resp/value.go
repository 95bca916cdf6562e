package resp

import (
	"strconv"
	"strings"
)

// Kind identifies the type of a Value.
type Kind uint8

// The zero Kind is KindNull, so the zero Value is a valid Null.
const (
	KindNull Kind = iota
	KindSimpleString
	KindError
	KindBulkString
	KindInteger
	KindBoolean
	KindArray
	KindMap
)

// Tag returns the wire type byte for the kind.
func (k Kind) Tag() byte {
	switch k {
	case KindSimpleString:
		return '+'
	case KindError:
		return '-'
	case KindBulkString:
		return '$'
	case KindInteger:
		return ':'
	case KindBoolean:
		return '#'
	case KindArray:
		return '*'
	case KindMap:
		return '%'
	default:
		return '_'
	}
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindBulkString:
		return "bulk-string"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one protocol value. Values are treated as immutable: the
// constructors copy their slice arguments and nothing in this package
// mutates a Value after construction.
type Value struct {
	kind  Kind
	str   string
	num   int64
	flag  bool
	elems []Value
	pairs []Pair
}

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// SimpleString returns a simple string value.
func SimpleString(s string) Value { return Value{kind: KindSimpleString, str: s} }

// Error returns a simple error value.
func Error(s string) Value { return Value{kind: KindError, str: s} }

// BulkString returns a bulk string value.
func BulkString(s string) Value { return Value{kind: KindBulkString, str: s} }

// Null returns the null value.
func Null() Value { return Value{} }

// Integer returns an integer value.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// Array returns an array holding a copy of elems.
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, elems: cp}
}

// Map returns a map holding a copy of pairs. Pair order is kept for
// encoding but is irrelevant to Equal.
func Map(pairs ...Pair) Value {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Value{kind: KindMap, pairs: cp}
}

// BulkStrings returns an array of bulk strings, the shape of every request.
func BulkStrings(strs ...string) Value {
	elems := make([]Value, len(strs))
	for i, s := range strs {
		elems[i] = BulkString(s)
	}
	return Value{kind: KindArray, elems: elems}
}

// Kind returns the type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsError reports whether v is a simple error.
func (v Value) IsError() bool { return v.kind == KindError }

// Str returns the text of a simple string, error or bulk string.
// It returns "" for other kinds.
func (v Value) Str() string { return v.str }

// Text returns the text carried by string-like values.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindSimpleString, KindError, KindBulkString:
		return v.str, true
	default:
		return "", false
	}
}

// Int returns the integer payload; zero for other kinds.
func (v Value) Int() int64 { return v.num }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.flag }

// Len returns the element count of an array or the pair count of a map.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindMap:
		return len(v.pairs)
	default:
		return 0
	}
}

// Elems returns a copy of the array elements.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	cp := make([]Value, len(v.elems))
	copy(cp, v.elems)
	return cp
}

// Pairs returns a copy of the map pairs in encoding order.
func (v Value) Pairs() []Pair {
	if v.kind != KindMap {
		return nil
	}
	cp := make([]Pair, len(v.pairs))
	copy(cp, v.pairs)
	return cp
}

// Lookup returns the value stored under key in a map.
func (v Value) Lookup(key Value) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, p := range v.pairs {
		if p.Key.Equal(key) {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether two values have the same kind and contents.
// Maps compare as sets of pairs regardless of order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindSimpleString, KindError, KindBulkString:
		return v.str == o.str
	case KindInteger:
		return v.num == o.num
	case KindBoolean:
		return v.flag == o.flag
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return mapsEqual(v.pairs, o.pairs)
	default:
		return false
	}
}

func mapsEqual(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	// Keys are indexed by their canonical encoding, which is unique per value
	// except for nested maps whose pair order differs; those fall back to a scan.
	index := make(map[string][]Value, len(b))
	for _, p := range b {
		k := string(Encode(p.Key))
		index[k] = append(index[k], p.Value)
	}
	for _, p := range a {
		candidates, ok := index[string(Encode(p.Key))]
		if !ok {
			if !scanPair(b, p) {
				return false
			}
			continue
		}
		found := false
		for _, c := range candidates {
			if c.Equal(p.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func scanPair(pairs []Pair, want Pair) bool {
	for _, p := range pairs {
		if p.Key.Equal(want.Key) && p.Value.Equal(want.Value) {
			return true
		}
	}
	return false
}

// String renders the value for humans: strings as their text, null as
// "null", arrays as "[a, b]" and maps as "{k: v}".
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindSimpleString, KindError, KindBulkString:
		sb.WriteString(v.str)
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.num, 10))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.flag))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.Key.render(sb)
			sb.WriteString(": ")
			p.Value.render(sb)
		}
		sb.WriteByte('}')
	}
}
