// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"fmt"
	"log/slog"

	"github.com/creachadair/jevent/internal/escape"
	"go4.org/mem"
)

// lexState is the lexical class of the token being accumulated.
type lexState uint8

const (
	lexFree         lexState = iota // between tokens
	lexWord                         // true, false, null
	lexIntegral                     // number without fraction or exponent (so far)
	lexDecimal                      // number with fraction or exponent
	lexString                       // inside a string; see quote
	lexEscape                       // after "\" inside a string
	lexUnicode                      // inside the hex digits of a \u escape
	lexSlash                        // after a "/" that may begin a comment
	lexLineComment                  // inside // ...
	lexBlockComment                 // inside /* ...
	lexBlockStar                    // after "*" inside /* ...
)

// holdState records a value that is recognized but not yet reported, because
// the separator that follows it has not been seen.
type holdState uint8

const (
	holdNone   holdState = iota
	holdString           // a complete string; key or value depends on what follows
	holdComma            // a comma; a close bracket here is a trailing comma
)

// expect is what the grammar requires next at the current nesting level.
type expect uint8

const (
	wantValue expect = iota // a value: top level, in an array, or after ":"
	wantKey                 // an object key (or "}" if the object is empty)
	wantColon               // ":" after an object key
	wantNext                // "," or a close bracket after a value
)

// A Tokenizer is an incremental JSON parser that consumes input as a series
// of byte chunks, and delivers events to a Handler as soon as they are
// complete. Tokens, escapes, and multi-byte characters may be split across
// chunk boundaries at any point.
//
// A run consists of a call to Start, zero or more calls to Update, and a
// call to Finish. The dialect and other settings may be changed only before
// the first Update of a run.
//
// Invalid UTF-8 in strings is not an error: each malformed sequence is
// replaced by one or more U+FFFD characters (see [Tokenizer.Update]).
//
// A Tokenizer is not safe for concurrent use. It never blocks; the owner
// cancels a run by ceasing to call Update.
type Tokenizer struct {
	h        Handler
	dialect  Dialect
	maxDepth int
	log      *slog.Logger

	running bool  // input has been consumed in this run
	err     error // sticky error

	lex   lexState
	quote byte   // the active quotation mark, in lexString and lexEscape
	buf   []byte // text of the current token
	hex   escape.Hex4
	sur   escape.Surrogates
	utf   escape.UTF8

	hold holdState
	held string // the held string, if hold == holdString

	open []byte // kinds of open containers, '{' or '['
	want expect

	// Location of the byte being processed.
	off   int
	loc   LineCol
	chunk []byte
	index int
}

// NewTokenizer constructs a tokenizer that reports events to h. The new
// tokenizer accepts strict JSON and is ready for a run.
func NewTokenizer(h Handler) *Tokenizer {
	t := &Tokenizer{h: h, maxDepth: DefaultMaxDepth}
	t.Start()
	return t
}

// Configure sets the dialect accepted by t. It reports a *ConfigError if t
// has already consumed input in the current run.
func (t *Tokenizer) Configure(d Dialect) error {
	if t.running {
		return &ConfigError{Setting: "dialect"}
	}
	t.dialect = d
	return nil
}

// Dialect reports the dialect accepted by t.
func (t *Tokenizer) Dialect() Dialect { return t.dialect }

// SetMaxDepth sets the maximum nesting depth of objects and arrays. If n <= 0
// the default is used. It reports a *ConfigError if t has already consumed
// input in the current run.
func (t *Tokenizer) SetMaxDepth(n int) error {
	if t.running {
		return &ConfigError{Setting: "maximum depth"}
	}
	if n <= 0 {
		n = DefaultMaxDepth
	}
	t.maxDepth = n
	return nil
}

// SetLogger sets a logger to which t reports recovered encoding errors at
// debug level. A nil logger disables logging.
func (t *Tokenizer) SetLogger(log *slog.Logger) { t.log = log }

// Depth reports the number of currently open objects and arrays.
func (t *Tokenizer) Depth() int { return len(t.open) }

// Offset reports the number of bytes consumed in the current run.
func (t *Tokenizer) Offset() int { return t.off }

// Start begins a new run, discarding any state from a previous run,
// including a prior error. The configuration is retained.
func (t *Tokenizer) Start() {
	*t = Tokenizer{
		h:        t.h,
		dialect:  t.dialect,
		maxDepth: t.maxDepth,
		log:      t.log,
		buf:      t.buf[:0],
		open:     t.open[:0],
		loc:      LineCol{Line: 1},
	}
}

// Update consumes a chunk of input, reporting events to the handler for each
// value completed by the chunk. Incomplete tokens are retained until the next
// call. The tokenizer does not retain chunk after Update returns.
//
// In case of a syntax error, the returned error has type [*SyntaxError]. If a
// handler method reports an error, Update returns that error. Once Update has
// reported an error, the tokenizer must be restarted.
func (t *Tokenizer) Update(chunk []byte) error {
	if t.err != nil {
		return t.err
	}
	t.running = true
	t.chunk = chunk
	defer func() { t.chunk = nil }()

	t.index = 0
	for t.index < len(chunk) {
		ch := chunk[t.index]
		ok, err := t.step(ch)
		if err != nil {
			t.err = err
			return err
		} else if ok {
			t.index++
			t.off++
			t.loc.advance(ch)
		}
	}
	return nil
}

// Finish ends the current run. Any pending number, constant, or string value
// is reported, and Finish reports a *SyntaxError if the input ended inside a
// string, a comment, or an unclosed object or array. After a successful
// Finish the tokenizer is ready for a new run.
func (t *Tokenizer) Finish() error {
	if t.err != nil {
		return t.err
	}
	t.index = 0

	var err error
	switch t.lex {
	case lexWord:
		err = t.endWord()
	case lexIntegral, lexDecimal:
		err = t.endNumber()
	case lexString, lexEscape, lexUnicode:
		err = t.fail("unterminated string")
	case lexSlash:
		err = t.fail("incomplete comment")
	case lexBlockComment, lexBlockStar:
		err = t.fail("unterminated block comment")
	}
	if err == nil && len(t.open) != 0 {
		err = t.fail("unexpected end of input: %d unclosed %s", len(t.open), plural(len(t.open), "bracket"))
	}
	if err == nil {
		err = t.flushValue()
	}
	if err != nil {
		t.err = err
		return err
	}
	t.Start()
	return nil
}

// step processes a single byte of input. It reports false if ch was not
// consumed, in which case the state has changed and ch must be reprocessed.
func (t *Tokenizer) step(ch byte) (bool, error) {
	switch t.lex {
	case lexFree:
		return true, t.free(ch)

	case lexWord:
		if isNameByte(ch) {
			t.buf = append(t.buf, ch)
			return true, nil
		}
		return false, t.endWord()

	case lexIntegral, lexDecimal:
		if !isNumByte(ch) {
			return false, t.endNumber()
		}
		if ch == '.' || ch == 'e' || ch == 'E' {
			t.lex = lexDecimal
		}
		t.buf = append(t.buf, ch)
		return true, nil

	case lexString:
		return true, t.stringByte(ch)

	case lexEscape:
		return true, t.escapeByte(ch)

	case lexUnicode:
		done, ok := t.hex.Add(ch)
		if !ok {
			return false, t.fail("invalid hex digit %q in Unicode escape", ch)
		} else if done {
			t.buf = t.sur.Add(t.buf, t.hex.Value())
			t.lex = lexString
		}
		return true, nil

	case lexSlash:
		switch {
		case ch == '/' && t.dialect.Has(LineComment):
			t.lex = lexLineComment
		case ch == '*' && t.dialect.Has(BlockComment):
			t.lex = lexBlockComment
		case ch == '/':
			return false, t.fail("line comments are not enabled")
		case ch == '*':
			return false, t.fail("block comments are not enabled")
		default:
			return false, t.fail("invalid %q after \"/\"", ch)
		}
		return true, nil

	case lexLineComment:
		if ch == '\n' {
			t.lex = lexFree
		}
		return true, nil

	case lexBlockComment:
		if ch == '*' {
			t.lex = lexBlockStar
		}
		return true, nil

	case lexBlockStar:
		if ch == '/' {
			t.lex = lexFree
		} else if ch != '*' {
			t.lex = lexBlockComment
		}
		return true, nil

	default:
		panic(fmt.Sprintf("invalid lexical state %d", t.lex))
	}
}

// free handles a byte between tokens.
func (t *Tokenizer) free(ch byte) error {
	switch {
	case ch <= ' ':
		return nil
	case ch == '{', ch == '[':
		return t.beginContainer(ch)
	case ch == '}', ch == ']':
		return t.endContainer(ch)
	case ch == ',':
		return t.comma()
	case ch == ':':
		return t.colon()
	case ch == '"', ch == '\'' && t.dialect.Has(SingleQuote):
		if err := t.beforeValue(true); err != nil {
			return err
		}
		t.lex, t.quote, t.buf = lexString, ch, t.buf[:0]
	case ch == '.':
		if err := t.beforeValue(false); err != nil {
			return err
		}
		t.lex, t.buf = lexDecimal, append(t.buf[:0], '0', '.')
	case isNumStart(ch):
		if err := t.beforeValue(false); err != nil {
			return err
		}
		t.lex, t.buf = lexIntegral, append(t.buf[:0], ch)
	case ch == 't', ch == 'f', ch == 'n':
		if err := t.beforeValue(false); err != nil {
			return err
		}
		t.lex, t.buf = lexWord, append(t.buf[:0], ch)
	case ch == '/':
		if t.dialect&Comments == 0 {
			return t.fail("comments are not enabled")
		}
		t.lex = lexSlash
	case ch == '\'':
		return t.fail("single-quoted strings are not enabled")
	default:
		return t.fail("unexpected %q", ch)
	}
	return nil
}

// beforeValue checks that a value may begin here. A string held at the top
// level is reported first, since top-level values need no separator.
func (t *Tokenizer) beforeValue(isString bool) error {
	switch t.want {
	case wantColon:
		return t.fail(`expected ":" after object key`)
	case wantNext:
		return t.fail(`expected "," or "%c"`, closerFor(t.open[len(t.open)-1]))
	case wantKey:
		if !isString {
			return t.fail("object key must be a string")
		}
	}
	if t.hold == holdString {
		// Only possible at the top level; see endString.
		if err := t.flushValue(); err != nil {
			return err
		}
	}
	t.hold = holdNone
	return nil
}

// afterValue updates the grammar state once a value is complete.
func (t *Tokenizer) afterValue() {
	if len(t.open) == 0 {
		t.want = wantValue
	} else {
		t.want = wantNext
	}
}

// flushValue reports a held string value, if there is one.
func (t *Tokenizer) flushValue() error {
	if t.hold != holdString {
		return nil
	}
	s := t.held
	t.hold, t.held = holdNone, ""
	return t.h.String(s)
}

func (t *Tokenizer) beginContainer(ch byte) error {
	if err := t.beforeValue(false); err != nil {
		return err
	}
	t.open = append(t.open, ch)
	if len(t.open) > t.maxDepth {
		return t.fail("nesting depth exceeds %d", t.maxDepth)
	}
	if ch == '{' {
		t.want = wantKey
		return t.h.BeginObject()
	}
	t.want = wantValue
	return t.h.BeginArray()
}

func (t *Tokenizer) endContainer(ch byte) error {
	if len(t.open) == 0 {
		return t.fail("unexpected %q", ch)
	}
	top := t.open[len(t.open)-1]
	if want := closerFor(top); ch != want {
		return t.fail("expected %q, got %q", want, ch)
	}

	// An empty container has not seen a comma. A trailing comma is allowed
	// only if the dialect permits it.
	empty := (top == '{' && t.want == wantKey) || (top == '[' && t.want == wantValue)
	switch {
	case t.hold == holdComma:
		if !t.dialect.Has(TrailingComma) {
			return t.fail("trailing comma is not allowed")
		}
	case t.want == wantColon:
		return t.fail(`expected ":" after object key`)
	case t.want != wantNext && !empty:
		return t.fail("unexpected %q", ch)
	}
	if err := t.flushValue(); err != nil {
		return err
	}

	t.hold = holdNone
	t.open = t.open[:len(t.open)-1]
	t.afterValue()
	if ch == '}' {
		return t.h.EndObject()
	}
	return t.h.EndArray()
}

func (t *Tokenizer) comma() error {
	if t.want != wantNext {
		return t.fail(`unexpected ","`)
	}
	if err := t.flushValue(); err != nil {
		return err
	}
	t.hold = holdComma
	if t.open[len(t.open)-1] == '{' {
		t.want = wantKey
	} else {
		t.want = wantValue
	}
	return nil
}

func (t *Tokenizer) colon() error {
	if t.want != wantColon || t.hold != holdString {
		return t.fail(`unexpected ":"`)
	}
	key := t.held
	t.hold, t.held = holdNone, ""
	t.want = wantValue
	return t.h.Key(key)
}

// endWord reports the constant accumulated in t.buf.
func (t *Tokenizer) endWord() error {
	t.lex = lexFree
	word := mem.B(t.buf)
	var err error
	switch {
	case word.Equal(mem.S("true")):
		err = t.h.Bool(true)
	case word.Equal(mem.S("false")):
		err = t.h.Bool(false)
	case word.Equal(mem.S("null")):
		err = t.h.Null()
	default:
		return t.failAt(t.off-len(t.buf), "unknown constant %q", word.StringCopy())
	}
	t.afterValue()
	return err
}

// endNumber reports the number accumulated in t.buf.
func (t *Tokenizer) endNumber() error {
	float := t.lex == lexDecimal
	t.lex = lexFree
	num, err := parseNumber(string(t.buf), float, t.dialect)
	if err != nil {
		return t.failAt(t.off-len(t.buf), "%v", err)
	}
	t.afterValue()
	return num.emit(t.h)
}

// fail reports a syntax error at the current byte.
func (t *Tokenizer) fail(msg string, args ...any) error {
	return t.failAt(t.off, msg, args...)
}

// failAt reports a syntax error at the given offset, using the current chunk
// for context.
func (t *Tokenizer) failAt(off int, msg string, args ...any) error {
	lo, hi := contextWindow(t.index, len(t.chunk))
	loc := t.loc
	if d := t.off - off; d > 0 && d <= loc.Column {
		loc.Column -= d
	}
	return &SyntaxError{
		Offset:   off,
		Location: loc,
		Context:  string(t.chunk[lo:hi]),
		Message:  fmt.Sprintf(msg, args...),
	}
}

func plural(n int, s string) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
