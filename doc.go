// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jevent implements event-driven parsers for JSON and a small set of
// optional extensions to it.
//
// # Handlers
//
// All the parsers in this package report the structure of their input by
// calling methods on a Handler value:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	member     | Key                       | "key": value
//	array      | BeginArray, EndArray      | [ ... ]
//	value      | Null, Bool, String        | null, true, false, "text"
//	number     | Int, Float, Decimal       | 12, -1.5e3
//
// If a handler method reports an error, parsing stops and that error is
// returned to the caller. The parsers ensure that corresponding Begin and
// End calls are correctly paired, or that a *SyntaxError is reported.
//
// # Dialects
//
// A Dialect selects extensions to strict JSON: line and block comments,
// single-quoted strings, trailing commas, and raw decimals. In RawDecimal
// mode, numbers that are not integers are reported as Decimal values holding
// their exact source text, instead of being converted to float64.
//
// # Reading buffers
//
// A Reader parses input that is entirely in memory, either a string
// (NewStringReader) or a byte slice (NewBytesReader). Call Read to parse one
// value, or Parse to parse all of them:
//
//	r := jevent.NewStringReader(input, jevent.Strict)
//	if err := r.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// A handler may defer parsing of a member's value: from its Key method it
// calls Skip, and the reader steps over the value without reporting it. The
// callback passed to Skip receives the span of the skipped value, which can
// be parsed later with Replay:
//
//	func (h *handler) Key(name string) error {
//	   if name == "payload" {
//	      return h.r.Skip(func(sp jevent.Span) error {
//	         h.payload = sp // parse it once the header is known
//	         return nil
//	      })
//	   }
//	   return nil
//	}
//
// # Incremental parsing
//
// A Tokenizer parses input that arrives as a sequence of byte chunks, for
// example from a network connection. Events are reported as soon as the
// chunk completing them is consumed:
//
//	t := jevent.NewTokenizer(handler)
//	t.Configure(jevent.JWCC)
//	for chunk := range chunks {
//	   if err := t.Update(chunk); err != nil {
//	      log.Fatalf("Update: %v", err)
//	   }
//	}
//	if err := t.Finish(); err != nil {
//	   log.Fatalf("Finish: %v", err)
//	}
//
// For any well-formed input and any way of dividing it into chunks, the
// events reported by a Tokenizer are the same as those reported by a Reader.
// A Stream drives a Tokenizer from an io.Reader.
package jevent
