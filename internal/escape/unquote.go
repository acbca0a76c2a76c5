// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings, and the
// incremental decoding of escapes and UTF-8 text shared by the parsers.
package escape

import (
	"fmt"
	"unicode/utf8"

	"go4.org/mem"
)

// An Error reports a malformed escape sequence at an offset relative to the
// start of the text being decoded.
type Error struct {
	Offset  int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s (offset %d)", e.Message, e.Offset) }

// Unescape decodes the body of a JSON string literal. The input must have
// the enclosing quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents, and a pair
// of \u escapes encoding a UTF-16 surrogate pair is composed into a single
// rune. Unpaired surrogates and malformed UTF-8 are replaced by the Unicode
// replacement rune. Unescape reports an *Error for an invalid or incomplete
// escape sequence.
func Unescape(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 && isASCII(src) {
		return mem.Append(dec, src), nil
	}

	var sur Surrogates
	var u8 UTF8
	pos := 0
	for pos < src.Len() {
		b := src.At(pos)
		if b >= utf8.RuneSelf {
			dec = sur.Flush(dec)
			dec, _ = u8.Feed(dec, b)
			pos++
			continue
		}
		dec, _ = u8.Interrupt(dec)
		if b != '\\' {
			dec = sur.Flush(dec)
			dec = append(dec, b)
			pos++
			continue
		}

		// Decode the escape following the backslash.
		if pos+1 >= src.Len() {
			return nil, &Error{Offset: pos, Message: "incomplete escape sequence"}
		}
		c := src.At(pos + 1)
		if c == 'u' {
			if pos+6 > src.Len() {
				return nil, &Error{Offset: pos, Message: "incomplete Unicode escape"}
			}
			var h Hex4
			for j := pos + 2; j < pos+6; j++ {
				if _, ok := h.Add(src.At(j)); !ok {
					return nil, &Error{Offset: j, Message: fmt.Sprintf("invalid hex digit %q in Unicode escape", src.At(j))}
				}
			}
			dec = sur.Add(dec, h.Value())
			pos += 6
			continue
		}
		v, ok := Named(c)
		if !ok {
			return nil, &Error{Offset: pos + 1, Message: fmt.Sprintf("invalid escape character %q", c)}
		}
		dec = sur.Flush(dec)
		dec = append(dec, v)
		pos += 2
	}
	dec, _ = u8.Interrupt(dec)
	return sur.Flush(dec), nil
}

func isASCII(src mem.RO) bool {
	for i := 0; i < src.Len(); i++ {
		if src.At(i) >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
