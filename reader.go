// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/creachadair/jevent/internal/escape"
	"go4.org/mem"
)

// DefaultMaxDepth is the default limit on the nesting depth of objects and
// arrays accepted by a Reader or Tokenizer.
const DefaultMaxDepth = 1000

// A Reader is a recursive-descent parser for JSON held entirely in memory.
// It delivers events to a Handler for one value at a time.
//
// A Reader supports deferred parsing: a handler may call Skip to have the
// next value scanned past without events, and later reparse it from its
// recorded offset with Replay (or SetPos and Read).
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src     mem.RO
	text    func(i, j int) string // the source text of the span [i, j)
	valid   func(i, j int) bool   // whether [i, j) is valid UTF-8
	dialect Dialect
	depth   int // limit on nesting depth

	pos  int              // offset of the next unread byte
	skip func(Span) error // pending deferred skip, or nil
}

// NewStringReader constructs a Reader that parses the contents of s.
// String values without escapes are returned as substrings of s.
func NewStringReader(s string, d Dialect) *Reader {
	return &Reader{
		src:     mem.S(s),
		text:    func(i, j int) string { return s[i:j] },
		valid:   func(i, j int) bool { return utf8.ValidString(s[i:j]) },
		dialect: d,
		depth:   DefaultMaxDepth,
	}
}

// NewBytesReader constructs a Reader that parses the contents of b. The
// caller must not modify b while the reader is in use.
func NewBytesReader(b []byte, d Dialect) *Reader {
	return &Reader{
		src:     mem.B(b),
		text:    func(i, j int) string { return string(b[i:j]) },
		valid:   func(i, j int) bool { return utf8.Valid(b[i:j]) },
		dialect: d,
		depth:   DefaultMaxDepth,
	}
}

// Dialect reports the dialect accepted by r.
func (r *Reader) Dialect() Dialect { return r.dialect }

// SetMaxDepth sets the maximum nesting depth of objects and arrays. If n <= 0
// the default is used.
func (r *Reader) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	r.depth = n
}

// Pos returns the offset of the next byte to be parsed. While a Handler
// method is reporting a key, Pos is the offset of the start of that key's
// value.
func (r *Reader) Pos() int { return r.pos }

// SetPos sets the offset of the next byte to be parsed. Offsets outside the
// input are clamped to its bounds.
func (r *Reader) SetPos(offset int) { r.pos = max(0, min(offset, r.src.Len())) }

// Raw returns the source text between offsets from and to, clamped to the
// bounds of the input. It is meant for diagnostics.
func (r *Reader) Raw(from, to int) string {
	n := r.src.Len()
	from, to = max(0, min(from, n)), max(0, min(to, n))
	if from >= to {
		return ""
	}
	return r.text(from, to)
}

// Skip registers a one-shot request to skip the next value that would be
// read. That value is scanned to find its extent but no events are reported
// for it; then done is called with its span, while r is positioned just past
// the value. If done reports an error, parsing stops with that error.
//
// Skip reports an error if a request is already pending. Calling Skip with
// a nil done cancels a pending request.
func (r *Reader) Skip(done func(Span) error) error {
	if done != nil && r.skip != nil {
		return errors.New("a skip request is already pending")
	}
	r.skip = done
	return nil
}

// Replay parses the value at span, reporting its events to h, then restores
// the position of r. The span is typically one reported by Skip.
func (r *Reader) Replay(span Span, h Handler) error {
	save := r.pos
	defer func() { r.pos = save }()
	r.SetPos(span.Pos)
	return r.Read(h)
}

// Read parses a single value and delivers its events to h. If no further
// value is available, Read returns io.EOF. In case of a syntax error, the
// returned error has type [*SyntaxError].
func (r *Reader) Read(h Handler) (err error) {
	defer r.recoverParseError(&err)

	r.skipSpace()
	if r.pos >= r.src.Len() {
		return io.EOF
	}
	r.parseValue(h, 0)
	return nil
}

// Parse parses values until the input is exhausted, delivering their events
// to h.
func (r *Reader) Parse(h Handler) error {
	for {
		if err := r.Read(h); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (r *Reader) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// parseValue consumes a single value of any type at nesting depth.
// Precondition: r.pos is at the first byte of the value.
func (r *Reader) parseValue(h Handler, depth int) {
	if done := r.skip; done != nil {
		r.skip = nil
		start := r.pos
		r.skipValue()
		r.checkError(done(Span{Pos: start, End: r.pos}))
		return
	}

	switch ch := r.peek("a value"); {
	case ch == '{':
		r.parseObject(h, depth+1)
	case ch == '[':
		r.parseArray(h, depth+1)
	case r.isQuote(ch):
		r.checkError(h.String(r.parseString()))
	case ch == 't', ch == 'f', ch == 'n':
		r.parseConstant(h)
	case isNumStart(ch):
		r.parseNumber(h)
	case ch == '\'':
		r.syntaxError(r.pos, nil, "single-quoted strings are not enabled")
	default:
		r.syntaxError(r.pos, nil, "unexpected %q", ch)
	}
}

// parseObject consumes an object and its members.
// Precondition: r.pos is at "{".
func (r *Reader) parseObject(h Handler, depth int) {
	r.checkDepth(depth)
	r.pos++
	r.checkError(h.BeginObject())

	r.skipSpace()
	if r.peek(`string or "}"`) == '}' {
		r.pos++
		r.checkError(h.EndObject())
		return
	}
	for {
		// Parse a single member: "key": value
		if ch := r.peek("string"); !r.isQuote(ch) {
			r.syntaxError(r.pos, nil, "expected string key, got %q", ch)
		}
		key := r.parseString()
		r.skipSpace()
		r.require(':')
		r.skipSpace()
		r.checkError(h.Key(key))
		r.parseValue(h, depth)

		// Check whether we have more members (",") or are done ("}").
		r.skipSpace()
		switch ch := r.peek(`"," or "}"`); ch {
		case '}':
			r.pos++
			r.checkError(h.EndObject())
			return
		case ',':
			r.pos++
		default:
			r.syntaxError(r.pos, nil, `expected "," or "}", got %q`, ch)
		}

		r.skipSpace()
		if r.peek("string") == '}' {
			if !r.dialect.Has(TrailingComma) {
				r.syntaxError(r.pos, nil, "trailing comma is not allowed")
			}
			r.pos++
			r.checkError(h.EndObject())
			return
		}
	}
}

// parseArray consumes an array and its elements.
// Precondition: r.pos is at "[".
func (r *Reader) parseArray(h Handler, depth int) {
	r.checkDepth(depth)
	r.pos++
	r.checkError(h.BeginArray())

	r.skipSpace()
	if r.peek(`value or "]"`) == ']' {
		r.pos++
		r.checkError(h.EndArray())
		return
	}
	for {
		r.parseValue(h, depth)

		r.skipSpace()
		switch ch := r.peek(`"," or "]"`); ch {
		case ']':
			r.pos++
			r.checkError(h.EndArray())
			return
		case ',':
			r.pos++
		default:
			r.syntaxError(r.pos, nil, `expected "," or "]", got %q`, ch)
		}

		r.skipSpace()
		if r.peek("value") == ']' {
			if !r.dialect.Has(TrailingComma) {
				r.syntaxError(r.pos, nil, "trailing comma is not allowed")
			}
			r.pos++
			r.checkError(h.EndArray())
			return
		}
	}
}

// parseString consumes a quoted string and returns its decoded contents.
// Precondition: r.pos is at an enabled quotation mark.
func (r *Reader) parseString() string {
	start, end, plain := r.scanString()
	r.pos = end + 1
	if plain {
		return r.text(start+1, end)
	}
	dec, err := escape.Unescape(r.src.Slice(start+1, end))
	if err != nil {
		var eerr *escape.Error
		if errors.As(err, &eerr) {
			r.syntaxError(start+1+eerr.Offset, err, "%s", eerr.Message)
		}
		r.syntaxError(start, err, "%v", err)
	}
	return string(dec)
}

// scanString finds the closing quote of the string starting at r.pos, and
// reports the offsets of the open and close quotes. It reports plain as true
// if the body of the string contains no escapes and is valid UTF-8, so that
// it can be used without decoding.
func (r *Reader) scanString() (start, end int, plain bool) {
	start = r.pos
	quote := r.src.At(start)
	var esc, high bool
	i := start + 1
	for {
		if i >= r.src.Len() {
			r.syntaxError(start, nil, "unterminated string")
		}
		switch ch := r.src.At(i); {
		case ch == quote:
			return start, i, !esc && (!high || r.valid(start+1, i))
		case ch == '\\':
			esc = true
			i += 2
			continue
		case ch >= utf8.RuneSelf:
			high = true
		}
		i++
	}
}

// parseConstant consumes one of the constants true, false, and null.
func (r *Reader) parseConstant(h Handler) {
	if word := r.scanConstant(); word.Equal(mem.S("null")) {
		r.checkError(h.Null())
	} else {
		r.checkError(h.Bool(word.Equal(mem.S("true"))))
	}
}

// scanConstant consumes one of the constants true, false, and null, and
// returns its text.
func (r *Reader) scanConstant() mem.RO {
	start := r.pos
	for r.pos < r.src.Len() && isNameByte(r.src.At(r.pos)) {
		r.pos++
	}
	word := r.src.Slice(start, r.pos)
	if !word.Equal(mem.S("true")) && !word.Equal(mem.S("false")) && !word.Equal(mem.S("null")) {
		r.syntaxError(start, nil, "unknown constant %q", word.StringCopy())
	}
	return word
}

// parseNumber consumes a maximal run of number bytes and reports it.
func (r *Reader) parseNumber(h Handler) { r.checkError(r.scanNumber().emit(h)) }

// scanNumber consumes a maximal run of number bytes and converts it.
func (r *Reader) scanNumber() numberValue {
	start := r.pos
	var float bool
	for r.pos < r.src.Len() {
		ch := r.src.At(r.pos)
		if !isNumByte(ch) {
			break
		}
		float = float || ch == '.' || ch == 'e' || ch == 'E'
		r.pos++
	}
	num, err := parseNumber(r.src.Slice(start, r.pos).StringCopy(), float, r.dialect)
	if err != nil {
		r.syntaxError(start, err, "%v", err)
	}
	return num
}

// skipValue advances past the value at r.pos without reporting events.
// Constants and numbers are checked as if they had been read; containers
// and strings are examined only enough to find where they end.
func (r *Reader) skipValue() {
	switch ch := r.peek("a value"); {
	case ch == '{', ch == '[':
		r.skipContainer()
	case r.isQuote(ch):
		_, end, _ := r.scanString()
		r.pos = end + 1
	case ch == 't', ch == 'f', ch == 'n':
		r.scanConstant()
	case isNumStart(ch):
		r.scanNumber()
	case ch == '\'':
		r.syntaxError(r.pos, nil, "single-quoted strings are not enabled")
	default:
		r.syntaxError(r.pos, nil, "unexpected %q", ch)
	}
}

// skipContainer advances past a bracketed value, matching brackets and
// stepping over strings and comments.
// Precondition: r.pos is at "{" or "[".
func (r *Reader) skipContainer() {
	start := r.pos
	var open []byte
	for {
		if r.pos >= r.src.Len() {
			r.syntaxError(start, nil, "unterminated %q", r.src.At(start))
		}
		switch ch := r.src.At(r.pos); {
		case ch == '{', ch == '[':
			open = append(open, ch)
			if len(open) > r.depth {
				r.syntaxError(r.pos, nil, "nesting depth exceeds %d", r.depth)
			}
		case ch == '}', ch == ']':
			if want := closerFor(open[len(open)-1]); ch != want {
				r.syntaxError(r.pos, nil, "expected %q, got %q", want, ch)
			}
			open = open[:len(open)-1]
			if len(open) == 0 {
				r.pos++
				return
			}
		case r.isQuote(ch):
			_, end, _ := r.scanString()
			r.pos = end
		case ch == '/' && r.dialect&Comments != 0:
			r.skipComment()
			continue
		}
		r.pos++
	}
}

// skipSpace advances past whitespace and (if enabled) comments.
func (r *Reader) skipSpace() {
	for r.pos < r.src.Len() {
		switch ch := r.src.At(r.pos); {
		case ch <= ' ':
			r.pos++
		case ch == '/' && r.dialect&Comments != 0:
			r.skipComment()
		default:
			return
		}
	}
}

// skipComment advances past a comment.
// Precondition: r.pos is at "/".
func (r *Reader) skipComment() {
	start := r.pos
	var next byte
	if start+1 < r.src.Len() {
		next = r.src.At(start + 1)
	}
	switch {
	case next == '/' && r.dialect.Has(LineComment):
		r.pos = start + 2
		for r.pos < r.src.Len() {
			r.pos++
			if r.src.At(r.pos-1) == '\n' {
				return
			}
		}
	case next == '*' && r.dialect.Has(BlockComment):
		for i := start + 2; i+1 < r.src.Len(); i++ {
			if r.src.At(i) == '*' && r.src.At(i+1) == '/' {
				r.pos = i + 2
				return
			}
		}
		r.syntaxError(start, nil, "unterminated block comment")
	case next == '/':
		r.syntaxError(start, nil, "line comments are not enabled")
	case next == '*':
		r.syntaxError(start, nil, "block comments are not enabled")
	default:
		r.syntaxError(start, nil, "invalid comment")
	}
}

// peek returns the byte at r.pos, or reports a syntax error mentioning want
// if the input is exhausted.
func (r *Reader) peek(want string) byte {
	if r.pos >= r.src.Len() {
		r.syntaxError(r.pos, io.ErrUnexpectedEOF, "expected %s, got end of input", want)
	}
	return r.src.At(r.pos)
}

// require consumes the byte ch, or reports a syntax error.
func (r *Reader) require(ch byte) {
	if got := r.peek(fmt.Sprintf("%q", ch)); got != ch {
		r.syntaxError(r.pos, nil, "expected %q, got %q", ch, got)
	}
	r.pos++
}

func (r *Reader) isQuote(ch byte) bool {
	return ch == '"' || (ch == '\'' && r.dialect.Has(SingleQuote))
}

func (r *Reader) checkDepth(depth int) {
	if depth > r.depth {
		r.syntaxError(r.pos, nil, "nesting depth exceeds %d", r.depth)
	}
}

func (r *Reader) syntaxError(pos int, err error, msg string, args ...any) {
	lc := LineCol{Line: 1}
	for i := 0; i < pos && i < r.src.Len(); i++ {
		lc.advance(r.src.At(i))
	}
	lo, hi := contextWindow(pos, r.src.Len())
	panic(&SyntaxError{
		Offset:   pos,
		Location: lc,
		Context:  r.src.Slice(lo, hi).StringCopy(),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

func (r *Reader) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

func closerFor(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}
