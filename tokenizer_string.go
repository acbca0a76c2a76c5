// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/creachadair/jevent/internal/escape"
)

// stringByte handles a byte inside a quoted string.
//
// Bytes >= 0x80 are decoded as UTF-8, possibly across several calls. A byte
// < 0x80 that interrupts a multi-byte sequence ends that sequence with
// replacement characters, then is processed normally.
func (t *Tokenizer) stringByte(ch byte) error {
	if ch >= utf8.RuneSelf {
		t.buf = t.sur.Flush(t.buf)
		var n int
		t.buf, n = t.utf.Feed(t.buf, ch)
		t.logReplaced(n)
		return nil
	}
	if t.utf.Pending() {
		var n int
		t.buf, n = t.utf.Interrupt(t.buf)
		t.logReplaced(n)
	}

	switch ch {
	case t.quote:
		t.buf = t.sur.Flush(t.buf)
		return t.endString()
	case '\\':
		t.lex = lexEscape
	default:
		t.buf = append(t.sur.Flush(t.buf), ch)
	}
	return nil
}

// escapeByte handles the byte following a "\" inside a quoted string.
func (t *Tokenizer) escapeByte(ch byte) error {
	if ch == 'u' {
		t.hex.Reset()
		t.lex = lexUnicode
		return nil
	}
	dec, ok := escape.Named(ch)
	if !ok {
		return t.fail("invalid escape character %q", ch)
	}
	t.buf = append(t.sur.Flush(t.buf), dec)
	t.lex = lexString
	return nil
}

// endString completes a string token. The string is held until the next
// separator shows whether it is an object key or a value.
func (t *Tokenizer) endString() error {
	t.lex = lexFree
	t.hold, t.held = holdString, string(t.buf)
	if t.want == wantKey {
		t.want = wantColon
	} else {
		t.afterValue()
	}
	return nil
}

func (t *Tokenizer) logReplaced(n int) {
	if n == 0 || t.log == nil {
		return
	}
	t.log.Log(context.Background(), slog.LevelDebug, "replaced invalid UTF-8",
		"offset", t.off, "replacements", n)
}
