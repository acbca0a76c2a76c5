// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Pos, s.End) }

// Len reports the length of s in bytes.
func (s Span) Len() int { return s.End - s.Pos }

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// advance updates lc to account for the byte b having been read.
func (lc *LineCol) advance(b byte) {
	if b == '\n' {
		lc.Line++
		lc.Column = 0
	} else {
		lc.Column++
	}
}
