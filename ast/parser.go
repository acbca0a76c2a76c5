// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"

	"github.com/creachadair/jevent"
)

// Parse parses and returns the JSON values from src. In case of error, any
// complete values already parsed are returned along with the error.
func Parse(src []byte, d jevent.Dialect) ([]Value, error) {
	h := new(Builder)
	err := jevent.NewBytesReader(src, d).Parse(h)
	return h.Values(), err
}

// ParseSingle parses a single JSON value from src. It is an error if src
// contains anything but whitespace (and comments, if enabled) after the
// value.
func ParseSingle(src []byte, d jevent.Dialect) (Value, error) {
	vs, err := Parse(src, d)
	if err != nil {
		return nil, err
	} else if len(vs) != 1 {
		return nil, fmt.Errorf("got %d values, want 1", len(vs))
	}
	return vs[0], nil
}

// ParseChunks parses the JSON values from a sequence of chunks using an
// incremental tokenizer. In case of error, any complete values already
// parsed are returned along with the error.
func ParseChunks(chunks [][]byte, d jevent.Dialect) ([]Value, error) {
	h := new(Builder)
	t := jevent.NewTokenizer(h)
	if err := t.Configure(d); err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if err := t.Update(c); err != nil {
			return h.Values(), err
		}
	}
	err := t.Finish()
	return h.Values(), err
}

// A Builder is a jevent.Handler that constructs syntax trees from the events
// it receives. The zero value is ready for use.
type Builder struct {
	stk  []Value  // open containers
	keys []string // pending keys, one per open object
	out  []Value  // complete top-level values
}

// Values returns the complete top-level values built so far.
func (b *Builder) Values() []Value { return b.out }

// Reset discards all values and partial state.
func (b *Builder) Reset() { *b = Builder{} }

func (b *Builder) push(v Value) { b.stk = append(b.stk, v) }

func (b *Builder) pop() Value {
	last := b.stk[len(b.stk)-1]
	b.stk = b.stk[:len(b.stk)-1]
	return last
}

// reduce attaches a complete value to the container atop the stack, or to
// the top-level output if there is none.
func (b *Builder) reduce(v Value) error {
	if len(b.stk) == 0 {
		b.out = append(b.out, v)
		return nil
	}
	switch top := b.stk[len(b.stk)-1].(type) {
	case *Object:
		if len(b.keys) == 0 {
			return errors.New("object value without a key")
		}
		key := b.keys[len(b.keys)-1]
		b.keys = b.keys[:len(b.keys)-1]
		top.Members = append(top.Members, &Member{Key: key, Value: v})
	case *Array:
		top.Values = append(top.Values, v)
	}
	return nil
}

func (b *Builder) BeginObject() error { b.push(new(Object)); return nil }
func (b *Builder) BeginArray() error  { b.push(new(Array)); return nil }
func (b *Builder) EndObject() error   { return b.end() }
func (b *Builder) EndArray() error    { return b.end() }

func (b *Builder) end() error {
	if len(b.stk) == 0 {
		return errors.New("unbalanced end of container")
	}
	return b.reduce(b.pop())
}

func (b *Builder) Key(name string) error {
	if len(b.stk) == 0 {
		return errors.New("key outside an object")
	} else if _, ok := b.stk[len(b.stk)-1].(*Object); !ok {
		return fmt.Errorf("key %q outside an object", name)
	}
	b.keys = append(b.keys, name)
	return nil
}

func (b *Builder) Null() error                    { return b.reduce(Null{}) }
func (b *Builder) Bool(v bool) error              { return b.reduce(Bool(v)) }
func (b *Builder) Int(v int64) error              { return b.reduce(Integer(v)) }
func (b *Builder) Float(v float64) error          { return b.reduce(Float(v)) }
func (b *Builder) Decimal(v jevent.Decimal) error { return b.reduce(Decimal(v)) }
func (b *Builder) String(s string) error          { return b.reduce(String(s)) }
