// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"fmt"
	"strings"
)

// A Dialect is a set of optional extensions to the JSON grammar. The zero
// value is strict JSON. A dialect is fixed for the duration of a parse.
type Dialect uint8

// Constants defining the dialect flags.
const (
	LineComment   Dialect = 1 << iota // accept // comments to end of line
	BlockComment                      // accept /* ... */ comments
	SingleQuote                       // accept 'single-quoted' strings
	TrailingComma                     // accept a comma before a closing bracket
	RawDecimal                        // report non-integer numbers as Decimal

	// Strict is standard JSON with no extensions.
	Strict Dialect = 0

	// Comments enables both line and block comments.
	Comments = LineComment | BlockComment

	// JWCC is JSON With Commas and Comments.
	JWCC = Comments | TrailingComma
)

var dialectNames = [...]struct {
	flag Dialect
	name string
}{
	{LineComment, "line-comment"},
	{BlockComment, "block-comment"},
	{SingleQuote, "single-quote-string"},
	{TrailingComma, "trailing-comma"},
	{RawDecimal, "raw-decimal"},
}

// Has reports whether all the flags in f are set in d.
func (d Dialect) Has(f Dialect) bool { return d&f == f }

// String renders d as a comma-separated list of flag names, or "strict".
func (d Dialect) String() string {
	if d == Strict {
		return "strict"
	}
	var names []string
	for _, n := range dialectNames {
		if d.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseDialect parses a list of flag names separated by commas or spaces, as
// rendered by Dialect.String. The name "strict" and the empty string denote
// no flags. Unknown names are reported as an error.
func ParseDialect(s string) (Dialect, error) {
	var d Dialect
	for _, name := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		if name == "strict" {
			continue
		}
		flag, ok := lookupFlag(name)
		if !ok {
			return 0, fmt.Errorf("unknown dialect flag %q", name)
		}
		d |= flag
	}
	return d, nil
}

// MustParseDialect is as ParseDialect, but panics on error.
func MustParseDialect(s string) Dialect {
	d, err := ParseDialect(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lookupFlag(name string) (Dialect, bool) {
	for _, n := range dialectNames {
		if n.name == name {
			return n.flag, true
		}
	}
	return 0, false
}
