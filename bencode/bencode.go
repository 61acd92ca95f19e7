// Package bencode implements the BitTorrent bencode serialization
// format: a tagged union of byte strings, signed integers, lists and
// dictionaries, as used on the wire by KRPC.
package bencode

import (
	"bytes"
	"fmt"
	"sort"
)

// Kind discriminates the four bencode value variants.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindList
	KindDict
)

// Value is a bencode value tree. Exactly one of Str, Int, List or Dict
// is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  []byte
	Int  int64
	List []Value
	Dict map[string]Value
}

// String builds a string-kind value.
func String(s []byte) Value {
	return Value{Kind: KindString, Str: s}
}

// Int builds an integer-kind value.
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// List builds a list-kind value.
func List(items []Value) Value {
	return Value{Kind: KindList, List: items}
}

// Dict builds a dict-kind value.
func Dict(entries map[string]Value) Value {
	return Value{Kind: KindDict, Dict: entries}
}

// ParseError reports a structural failure while decoding bencode.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bencode: %s", e.Detail)
}

func newParseError(format string, args ...any) error {
	return &ParseError{Detail: fmt.Sprintf(format, args...)}
}

// ValueError reports an encode-time invariant violation.
type ValueError struct {
	Detail string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("bencode: invalid value: %s", e.Detail)
}

// Decode parses the single top-level bencode value encoded in data.
// Trailing bytes after the value are ignored; callers that need to
// detect trailing garbage should compare the consumed length
// themselves via DecodePrefix.
func Decode(data []byte) (Value, error) {
	v, _, err := DecodePrefix(data)
	return v, err
}

// DecodePrefix parses one bencode value from the front of data and
// returns it along with the number of bytes consumed.
func DecodePrefix(data []byte) (Value, int, error) {
	d := &decoder{buf: data}
	v, err := d.value()
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.pos, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) peek() (byte, bool) {
	if d.pos >= len(d.buf) {
		return 0, false
	}
	return d.buf[d.pos], true
}

func (d *decoder) value() (Value, error) {
	b, ok := d.peek()
	if !ok {
		return Value{}, newParseError("unexpected end of input")
	}
	switch {
	case b == 'i':
		return d.integer()
	case b == 'l':
		return d.list()
	case b == 'd':
		return d.dict()
	case b >= '0' && b <= '9':
		return d.str()
	default:
		return Value{}, newParseError("unknown leading byte %q at offset %d", b, d.pos)
	}
}

func (d *decoder) integer() (Value, error) {
	start := d.pos
	d.pos++ // 'i'
	end := bytes.IndexByte(d.buf[d.pos:], 'e')
	if end < 0 {
		return Value{}, newParseError("truncated integer starting at offset %d", start)
	}
	digits := d.buf[d.pos : d.pos+end]
	d.pos += end + 1 // consume 'e'

	if len(digits) == 0 {
		return Value{}, newParseError("empty integer")
	}
	neg := false
	s := digits
	if s[0] == '-' {
		neg = true
		s = s[1:]
		if len(s) == 0 {
			return Value{}, newParseError("invalid integer %q: missing digits after sign", digits)
		}
	}
	if s[0] == '0' && len(s) > 1 {
		return Value{}, newParseError("invalid integer %q: leading zero", digits)
	}
	if neg && s[0] == '0' {
		return Value{}, newParseError("invalid integer %q: negative zero", digits)
	}
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return Value{}, newParseError("invalid integer %q: non-digit byte %q", digits, c)
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return Int(n), nil
}

func (d *decoder) str() (Value, error) {
	start := d.pos
	colon := bytes.IndexByte(d.buf[d.pos:], ':')
	if colon < 0 {
		return Value{}, newParseError("truncated string length starting at offset %d", start)
	}
	lenDigits := d.buf[d.pos : d.pos+colon]
	var length int
	for _, c := range lenDigits {
		if c < '0' || c > '9' {
			return Value{}, newParseError("invalid string length %q", lenDigits)
		}
		length = length*10 + int(c-'0')
	}
	d.pos += colon + 1 // consume digits and ':'

	if d.pos+length > len(d.buf) {
		return Value{}, newParseError("overlong string: declared length %d exceeds %d remaining bytes", length, len(d.buf)-d.pos)
	}
	s := d.buf[d.pos : d.pos+length]
	d.pos += length
	return String(s), nil
}

func (d *decoder) list() (Value, error) {
	d.pos++ // 'l'
	var items []Value
	for {
		b, ok := d.peek()
		if !ok {
			return Value{}, newParseError("list missing closing 'e'")
		}
		if b == 'e' {
			d.pos++
			return List(items), nil
		}
		v, err := d.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func (d *decoder) dict() (Value, error) {
	d.pos++ // 'd'
	entries := make(map[string]Value)
	for {
		b, ok := d.peek()
		if !ok {
			return Value{}, newParseError("dict missing closing 'e'")
		}
		if b == 'e' {
			d.pos++
			return Dict(entries), nil
		}
		key, err := d.value()
		if err != nil {
			return Value{}, err
		}
		if key.Kind != KindString {
			return Value{}, newParseError("dict key must be a string, got kind %d", key.Kind)
		}
		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		entries[string(key.Str)] = val
	}
}

// Encode renders v in canonical bencode form: dict keys in strictly
// ascending byte order, every list/dict properly closed.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTo(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindString:
		fmt.Fprintf(buf, "%d:", len(v.Str))
		buf.Write(v.Str)
	case KindInt:
		fmt.Fprintf(buf, "i%de", v.Int)
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			if err := encodeTo(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		keys := make([]string, 0, len(v.Dict))
		for k := range v.Dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(buf, "%d:%s", len(k), k)
			if err := encodeTo(buf, v.Dict[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	default:
		return &ValueError{Detail: fmt.Sprintf("unknown value kind %d", v.Kind)}
	}
	return nil
}
