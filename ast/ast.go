// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a syntax tree for JSON values, and a handler that
// constructs syntax trees from parser events.
package ast

import (
	"strconv"
	"strings"

	"github.com/creachadair/jevent"
)

// A Value is an arbitrary JSON value. The concrete type is one of *Object,
// *Array, String, Integer, Float, Decimal, Bool, or Null.
type Value interface {
	// JSON renders the value as compact JSON text.
	JSON() string
}

// An Object is a collection of key-value members.
type Object struct {
	Members []*Member
}

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

func (o *Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o.Members {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

func (m *Member) JSON() string { return jevent.Quote(m.Key) + ":" + m.Value.JSON() }

// An Array is a sequence of values.
type Array struct {
	Values []Value
}

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.Values) }

func (a *Array) JSON() string {
	ss := make([]string, len(a.Values))
	for i, v := range a.Values {
		ss[i] = v.JSON()
	}
	return "[" + strings.Join(ss, ",") + "]"
}

// A String is a string value.
type String string

func (s String) JSON() string { return jevent.Quote(string(s)) }

// An Integer is an integer value.
type Integer int64

func (z Integer) JSON() string { return strconv.FormatInt(int64(z), 10) }

// A Float is a floating-point value.
type Float float64

func (f Float) JSON() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// A Decimal is a number preserved as written in the source.
type Decimal jevent.Decimal

func (d Decimal) JSON() string { return string(d) }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

// Null represents the null constant.
type Null struct{}

func (Null) JSON() string { return "null" }
