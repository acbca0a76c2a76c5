// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor locates values by path inside JSON input. Only the values
// along the path are examined; everything else is skipped without being
// decoded.
package cursor

import (
	"fmt"
	"io"

	"github.com/creachadair/jevent"
	"github.com/creachadair/jevent/ast"
)

// Find parses and returns the value at path inside the next value of r.
// Path elements are strings, denoting object keys, or integers, denoting
// offsets into arrays or into the members of objects. Negative offsets count
// backward from the end (-1 is last, -2 second last). If an object has
// several members with the same key, the first is used.
//
// On success, r is positioned after the value containing the path, so that
// Find may be called again for the next value. If no value remains, Find
// returns io.EOF.
func Find(r *jevent.Reader, path ...any) (ast.Value, error) {
	span, err := Locate(r, path...)
	if err != nil {
		return nil, err
	}
	var b ast.Builder
	if err := r.Replay(span, &b); err != nil {
		return nil, err
	}
	return b.Values()[0], nil
}

// Locate reports the span of the value at path inside the next value of r,
// without parsing it. Path elements are as described for Find.
func Locate(r *jevent.Reader, path ...any) (jevent.Span, error) {
	span, err := skipNext(r)
	if err != nil {
		return span, err
	}
	end := r.Pos()
	defer r.SetPos(end)

	for _, elt := range path {
		span, err = step(r, span, elt)
		if err != nil {
			return span, err
		}
	}
	return span, nil
}

// skipNext skips the next value of r and reports its span.
func skipNext(r *jevent.Reader) (jevent.Span, error) {
	var span jevent.Span
	if err := r.Skip(func(sp jevent.Span) error { span = sp; return nil }); err != nil {
		return span, err
	}
	err := r.Read(new(level))
	if err != nil {
		r.Skip(nil) // nothing was read
		if err == io.EOF {
			return span, io.EOF
		}
		return span, fmt.Errorf("scanning value: %w", err)
	}
	return span, nil
}

// step resolves a single path element against the value at span, and
// returns the span of the value it selects.
func step(r *jevent.Reader, span jevent.Span, elt any) (jevent.Span, error) {
	lv := &level{r: r}
	if err := r.Replay(span, lv); err != nil {
		r.Skip(nil)
		return span, err
	}
	r.Skip(nil) // an array leaves a request pending after its last element

	switch t := elt.(type) {
	case string:
		if lv.kind != '{' {
			return span, fmt.Errorf("cannot traverse %s with %q", lv.what(), t)
		}
		for i, key := range lv.keys {
			if key == t {
				return lv.spans[i], nil
			}
		}
		return span, fmt.Errorf("key %q not found", t)

	case int:
		if lv.kind == 0 {
			return span, fmt.Errorf("cannot traverse %s with %v", lv.what(), t)
		}
		i, ok := fixArrayBound(len(lv.spans), t)
		if !ok {
			return span, fmt.Errorf("%s index %d out of bounds (n=%d)", lv.what(), i, len(lv.spans))
		}
		return lv.spans[i], nil

	default:
		return span, fmt.Errorf("invalid path element %T", elt)
	}
}

// A level is a jevent.Handler that records the extent of each element of a
// single object or array. The elements themselves are skipped.
type level struct {
	r     *jevent.Reader
	kind  byte // '{', '[', or 0 for a scalar
	keys  []string
	spans []jevent.Span
}

func (l *level) what() string {
	switch l.kind {
	case '{':
		return "object"
	case '[':
		return "array"
	}
	return "scalar"
}

func (l *level) add(sp jevent.Span) error { l.spans = append(l.spans, sp); return nil }

// next records an array element and arranges to skip the one after it.
func (l *level) next(sp jevent.Span) error {
	l.spans = append(l.spans, sp)
	return l.r.Skip(l.next)
}

func (l *level) BeginObject() error { l.kind = '{'; return nil }

func (l *level) BeginArray() error {
	l.kind = '['
	return l.r.Skip(l.next)
}

func (l *level) Key(name string) error {
	l.keys = append(l.keys, name)
	return l.r.Skip(l.add)
}

func (*level) EndObject() error             { return nil }
func (*level) EndArray() error              { return nil }
func (*level) Null() error                  { return nil }
func (*level) Bool(bool) error              { return nil }
func (*level) Int(int64) error              { return nil }
func (*level) Float(float64) error          { return nil }
func (*level) Decimal(jevent.Decimal) error { return nil }
func (*level) String(string) error          { return nil }

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
