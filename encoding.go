// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"errors"

	"github.com/creachadair/jevent/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(escape.Quote(mem.S(src))) }

// Unquote decodes a JSON string literal enclosed in double quotation marks,
// or in single quotation marks if d includes SingleQuote. The quotation marks
// are removed, and escape sequences are replaced with their unescaped
// equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence.
// Malformed UTF-8 and unpaired surrogates are replaced by U+FFFD.
func Unquote(src string, d Dialect) (string, error) {
	if len(src) < 2 || src[0] != src[len(src)-1] || !(src[0] == '"' || (src[0] == '\'' && d.Has(SingleQuote))) {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.Unescape(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
