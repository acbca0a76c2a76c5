// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf16"
	"unicode/utf8"
)

var named = [...]byte{
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// Named reports the byte denoted by the single-character escape \c, and
// whether c names a valid escape. The \u escape is not handled here.
func Named(c byte) (byte, bool) {
	if int(c) < len(named) && named[c] != 0 {
		return named[c], true
	}
	return 0, false
}

// HexValue reports the value of the hexadecimal digit c, which may be
// upper or lower case.
func HexValue(c byte) (rune, bool) {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0'), true
	case 'a' <= c && c <= 'f':
		return rune(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return rune(c - 'A' + 10), true
	}
	return 0, false
}

// Hex4 accumulates the four hex digits of a \u escape one at a time.
// The zero value is ready for use.
type Hex4 struct {
	n int
	v rune
}

// Reset discards any accumulated digits.
func (h *Hex4) Reset() { *h = Hex4{} }

// Add folds the hex digit c into h. It reports whether the escape is complete
// after this digit, and false for ok if c is not a hex digit.
func (h *Hex4) Add(c byte) (done, ok bool) {
	d, ok := HexValue(c)
	if !ok {
		return false, false
	}
	h.v = h.v<<4 | d
	h.n++
	return h.n == 4, true
}

// Value returns the 16-bit code unit accumulated so far.
func (h *Hex4) Value() rune { return h.v }

// Surrogates composes a stream of UTF-16 code units from \u escapes into
// UTF-8 text. A high surrogate is held until the next code unit arrives.
// The zero value is ready for use.
type Surrogates struct {
	high rune
}

// Pending reports whether a high surrogate is waiting for its partner.
func (s *Surrogates) Pending() bool { return s.high != 0 }

// Add appends the encoding of code unit u to dst. A low surrogate following a
// held high surrogate composes a single rune. Unpaired surrogates of either
// kind are encoded as U+FFFD.
func (s *Surrogates) Add(dst []byte, u rune) []byte {
	if s.high != 0 {
		hi := s.high
		s.high = 0
		if isLow(u) {
			return utf8.AppendRune(dst, utf16.DecodeRune(hi, u))
		}
		dst = utf8.AppendRune(dst, utf8.RuneError)
	}
	switch {
	case isHigh(u):
		s.high = u
		return dst
	case isLow(u):
		return utf8.AppendRune(dst, utf8.RuneError)
	}
	return utf8.AppendRune(dst, u)
}

// Flush appends U+FFFD to dst if a high surrogate is held, and clears it.
// Callers must flush before appending anything that is not a \u escape.
func (s *Surrogates) Flush(dst []byte) []byte {
	if s.high != 0 {
		s.high = 0
		return utf8.AppendRune(dst, utf8.RuneError)
	}
	return dst
}

func isHigh(u rune) bool { return 0xD800 <= u && u < 0xDC00 }
func isLow(u rune) bool  { return 0xDC00 <= u && u < 0xE000 }

// UTF8 is an incremental decoder for multi-byte UTF-8 sequences, fed one
// byte at a time. It records the lead byte of a pending sequence so that the
// first continuation byte can be range checked, rejecting overlong forms,
// encoded surrogates, and code points past U+10FFFF.
//
// Malformed input is recovered by substituting U+FFFD:
//
//   - a byte that cannot begin a sequence yields one U+FFFD;
//   - an ASCII byte interrupting a pending sequence yields one U+FFFD for
//     each byte of the sequence consumed so far (see Interrupt);
//   - an invalid continuation byte yields one U+FFFD for each byte consumed
//     so far including itself, and is not reconsidered as a lead byte.
//
// The zero value is ready for use.
type UTF8 struct {
	lead byte // lead byte of the pending sequence; 0 if none
	seen int  // bytes of the pending sequence consumed, including lead
	need int  // continuation bytes still required
	val  rune
}

// Pending reports whether a multi-byte sequence is partially decoded.
func (u *UTF8) Pending() bool { return u.lead != 0 }

// Reset discards any pending sequence.
func (u *UTF8) Reset() { *u = UTF8{} }

// Feed consumes a byte b >= 0x80 and appends any completed rune or
// replacement characters to dst. It also returns the number of replacement
// characters appended.
func (u *UTF8) Feed(dst []byte, b byte) ([]byte, int) {
	if u.lead == 0 {
		switch {
		case 0xC2 <= b && b <= 0xDF:
			*u = UTF8{lead: b, seen: 1, need: 1, val: rune(b & 0x1F)}
		case 0xE0 <= b && b <= 0xEF:
			*u = UTF8{lead: b, seen: 1, need: 2, val: rune(b & 0x0F)}
		case 0xF0 <= b && b <= 0xF4:
			*u = UTF8{lead: b, seen: 1, need: 3, val: rune(b & 0x07)}
		default:
			return utf8.AppendRune(dst, utf8.RuneError), 1
		}
		return dst, 0
	}

	lo, hi := byte(0x80), byte(0xBF)
	if u.seen == 1 {
		switch u.lead {
		case 0xE0:
			lo = 0xA0
		case 0xED:
			hi = 0x9F
		case 0xF0:
			lo = 0x90
		case 0xF4:
			hi = 0x8F
		}
	}
	if b < lo || b > hi {
		n := u.seen + 1
		u.Reset()
		return appendErrors(dst, n), n
	}
	u.val = u.val<<6 | rune(b&0x3F)
	u.seen++
	u.need--
	if u.need > 0 {
		return dst, 0
	}
	r := u.val
	u.Reset()
	return utf8.AppendRune(dst, r), 0
}

// Interrupt ends a pending sequence because a byte < 0x80 arrived. It appends
// one U+FFFD per byte of the sequence consumed so far and returns the number
// appended. If no sequence is pending, Interrupt does nothing.
func (u *UTF8) Interrupt(dst []byte) ([]byte, int) {
	if u.lead == 0 {
		return dst, 0
	}
	n := u.seen
	u.Reset()
	return appendErrors(dst, n), n
}

func appendErrors(dst []byte, n int) []byte {
	for range n {
		dst = utf8.AppendRune(dst, utf8.RuneError)
	}
	return dst
}
