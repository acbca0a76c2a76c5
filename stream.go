// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// DefaultChunkSize is the default size of the chunks a Stream reads.
const DefaultChunkSize = 4096

// Stream is a stream parser that consumes input from an io.Reader and
// delivers events to a Handler corresponding with the structure of the input.
// It feeds the input to a Tokenizer one chunk at a time, so the entire input
// need never be held in memory.
type Stream struct {
	r        io.Reader
	dialect  Dialect
	size     int
	maxDepth int
	log      *slog.Logger
}

// NewStream constructs a new Stream that consumes input from r, accepting
// the given dialect.
func NewStream(r io.Reader, d Dialect) *Stream {
	return &Stream{r: r, dialect: d, size: DefaultChunkSize}
}

// SetChunkSize sets the size of the chunks read from the input. If n <= 0
// the default is used.
func (s *Stream) SetChunkSize(n int) {
	if n <= 0 {
		n = DefaultChunkSize
	}
	s.size = n
}

// SetMaxDepth sets the maximum nesting depth of objects and arrays. If n <= 0
// the default is used.
func (s *Stream) SetMaxDepth(n int) { s.maxDepth = n }

// SetLogger sets a logger for recovered encoding errors (see
// [Tokenizer.SetLogger]).
func (s *Stream) SetLogger(log *slog.Logger) { s.log = log }

// Parse reads the input to the end and delivers events to h until either an
// error occurs or the input is exhausted. In case of a syntax error, the
// returned error has type [*SyntaxError]. If a Handler method reports an
// error, parsing stops and that error is returned.
//
// Parse checks ctx before reading each chunk, and returns its error if it
// has ended.
func (s *Stream) Parse(ctx context.Context, h Handler) error {
	t := NewTokenizer(h)
	t.SetLogger(s.log)
	if err := t.Configure(s.dialect); err != nil {
		return err
	} else if err := t.SetMaxDepth(s.maxDepth); err != nil {
		return err
	}

	buf := make([]byte, s.size)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		nr, err := s.r.Read(buf)
		if nr > 0 {
			if uerr := t.Update(buf[:nr]); uerr != nil {
				return uerr
			}
		}
		if errors.Is(err, io.EOF) {
			return t.Finish()
		} else if err != nil {
			return err
		}
	}
}
