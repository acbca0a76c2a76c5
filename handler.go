// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"math/big"
	"strconv"
)

// A Handler handles events from parsing JSON input. If a method reports an
// error, parsing stops and that error is returned to the caller.
//
// Events arrive in document order. Inside an object, each value is preceded
// by exactly one call to Key; inside an array only values occur. Begin and
// End calls are correctly nested, or else a *SyntaxError is reported.
type Handler interface {
	// Begin a new object.
	BeginObject() error

	// End the most-recently-opened object.
	EndObject() error

	// Begin a new array.
	BeginArray() error

	// End the most-recently-opened array.
	EndArray() error

	// Report the key of an object member. The member's value follows.
	Key(name string) error

	// Report a null value.
	Null() error

	// Report a Boolean value.
	Bool(v bool) error

	// Report a number with no fraction or exponent that fits in an int64.
	Int(v int64) error

	// Report any other number. Not used when RawDecimal is enabled.
	Float(v float64) error

	// Report a number that is not an int64, in RawDecimal mode only.
	Decimal(v Decimal) error

	// Report a string value, with escapes decoded.
	String(s string) error
}

// A Decimal is a number literal preserved exactly as written in the source.
// Decimal values are reported instead of Float in RawDecimal mode.
type Decimal string

// String returns the literal text of d.
func (d Decimal) String() string { return string(d) }

// Float64 returns the nearest float64 to d.
func (d Decimal) Float64() (float64, error) { return strconv.ParseFloat(string(d), 64) }

// Rat returns the exact value of d as a rational number.
func (d Decimal) Rat() (*big.Rat, bool) { return new(big.Rat).SetString(string(d)) }
