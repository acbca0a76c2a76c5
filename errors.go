// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import "fmt"

// SyntaxError is the concrete type of errors reported for malformed input,
// including mismatched brackets and the use of a dialect extension that is
// not enabled. A parser or tokenizer that has reported a SyntaxError should
// be discarded.
type SyntaxError struct {
	Offset   int     // byte offset of the failure, 0-based
	Location LineCol // line and column of the failure
	Context  string  // source text surrounding the failure
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// A ConfigError reports an attempt to change the configuration of a
// tokenizer after it has begun consuming input.
type ConfigError struct {
	Setting string // the name of the setting
}

// Error satisfies the error interface.
func (c *ConfigError) Error() string {
	return fmt.Sprintf("cannot change %s after input has been consumed", c.Setting)
}

// contextRadius is the number of bytes on either side of a failure that are
// quoted in the Context of a SyntaxError.
const contextRadius = 16

// contextWindow returns the bounds of the context window around pos in a
// source of length n.
func contextWindow(pos, n int) (lo, hi int) {
	return max(0, min(pos, n)-contextRadius), min(n, pos+contextRadius)
}
