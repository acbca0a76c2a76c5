// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jevent"
	"github.com/creachadair/jevent/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

// eventTests are inputs that all parsers must accept, and the events they
// must report.
var eventTests = []struct {
	name    string
	input   string
	dialect jevent.Dialect
	want    string
}{
	{"Empty", "", jevent.Strict, ""},
	{"Space", " \t\r\n ", jevent.Strict, ""},
	{"LowBytes", "\x00[\x011\x1f]\x02", jevent.Strict, "BeginArray\nInt 1\nEndArray"},

	{"Constants", "true false null", jevent.Strict, `
Bool true
Bool false
Null`},

	{"Numbers", `0 5 -6.32 0.1e-2 1E3 -0 3e+2 2.50`, jevent.Strict, `
Int 0
Int 5
Float -6.32
Float 0.001
Float 1000
Int 0
Float 300
Float 2.5`},

	{"BigIntegers", `9223372036854775807 -9223372036854775808 9223372036854775808`, jevent.Strict, `
Int 9223372036854775807
Int -9223372036854775808
Float 9.223372036854776e+18`},

	{"LeadingDot", `[.5, -.25]`, jevent.Strict, `
BeginArray
Float 0.5
Float -0.25
EndArray`},

	{"RawDecimal", `[1.5e2, 12, 0.10, .5, 1e400]`, jevent.RawDecimal, `
BeginArray
Decimal 1.5e2
Int 12
Decimal 0.10
Decimal 0.5
Decimal 1e400
EndArray`},

	{"Strings", `"" "a b c" "a\tb" "a\u0020b" "\"\\\/\b\f\n\r\t" "it\'s"`, jevent.Strict, `
String ""
String "a b c"
String "a\tb"
String "a b"
String "\"\\/\b\f\n\r\t"
String "it's"`},

	{"UnicodeEscapes", `"\u00e9t\u00C9" "\u0000" "\u20AC"`, jevent.Strict, `
String "étÉ"
String "\u0000"
String "€"`},

	{"NonASCII", `"héllo wörld ✓ 😀" {"ключ": "値"}`, jevent.Strict, `
String "héllo wörld ✓ 😀"
BeginObject
Key "ключ"
String "値"
EndObject`},

	{"Surrogates", `"\ud83d\ude00" "a\uD83D\uDE00b"`, jevent.Strict, `
String "😀"
String "a😀b"`},

	{"LoneSurrogates", `"\ud83dx" "\ude00" "\ud83d\ud83d\ude00" "\ud83d\n" "\ud83d"`, jevent.Strict, `
String "\ufffdx"
String "\ufffd"
String "\ufffd😀"
String "\ufffd\n"
String "\ufffd"`},

	{"EmptyContainers", `{} [] [[]] [{}]`, jevent.Strict, `
BeginObject
EndObject
BeginArray
EndArray
BeginArray
BeginArray
EndArray
EndArray
BeginArray
BeginObject
EndObject
EndArray`},

	{"Object", `{"a":15}`, jevent.Strict, `
BeginObject
Key "a"
Int 15
EndObject`},

	{"Nested", `{"x":null, "y":[true, {"z": "w"}], "": [], "s": "t"}`, jevent.Strict, `
BeginObject
Key "x"
Null
Key "y"
BeginArray
Bool true
BeginObject
Key "z"
String "w"
EndObject
EndArray
Key ""
BeginArray
EndArray
Key "s"
String "t"
EndObject`},

	{"Sequence", `{} [] "s" 1 "t"`, jevent.Strict, `
BeginObject
EndObject
BeginArray
EndArray
String "s"
Int 1
String "t"`},

	{"Adjacent", `[1,"a",true,null,{"b":2.5,"c":"d"},[]]`, jevent.Strict, `
BeginArray
Int 1
String "a"
Bool true
Null
BeginObject
Key "b"
Float 2.5
Key "c"
String "d"
EndObject
BeginArray
EndArray
EndArray`},

	{"LineComments", "// head\n[1, // one\n2]// tail", jevent.LineComment, `
BeginArray
Int 1
Int 2
EndArray`},

	{"BlockComments", `/**/{"a"/* k */:/***/1/* x */}/*/ */`, jevent.BlockComment, `
BeginObject
Key "a"
Int 1
EndObject`},

	{"CommentsAfterTokens", "[1//x\n,true/*y*/,\"s\"/**/]", jevent.Comments, `
BeginArray
Int 1
Bool true
String "s"
EndArray`},

	{"SingleQuotes", `{'a': 'it\'s', "b": '"q"', 'c': "'"}`, jevent.SingleQuote, `
BeginObject
Key "a"
String "it's"
Key "b"
String "\"q\""
Key "c"
String "'"
EndObject`},

	{"TrailingCommas", `{"a":[1,2,],"b":{"c":3,},}`, jevent.TrailingComma, `
BeginObject
Key "a"
BeginArray
Int 1
Int 2
EndArray
Key "b"
BeginObject
Key "c"
Int 3
EndObject
EndObject`},

	{"JWCC", `{
  // The answer.
  "answer": 42,
  "list": [
    "a", /* between */ "b",
  ],
}`, jevent.JWCC, `
BeginObject
Key "answer"
Int 42
Key "list"
BeginArray
String "a"
String "b"
EndArray
EndObject`},
}

// errorTests are inputs that all parsers must reject with a syntax error.
var errorTests = []struct {
	input   string
	dialect jevent.Dialect
}{
	// Unbalanced objects and arrays.
	{`{`, jevent.Strict},
	{`}`, jevent.Strict},
	{`[`, jevent.Strict},
	{`]`, jevent.Strict},
	{`[}`, jevent.Strict},
	{`{]`, jevent.Strict},
	{`[1]]`, jevent.Strict},
	{`{"a":1}}`, jevent.Strict},
	{`[[1]`, jevent.Strict},

	// Malformed members and elements.
	{`{false:1}`, jevent.Strict},
	{`{1:2}`, jevent.Strict},
	{`{"a"}`, jevent.Strict},
	{`{"a":}`, jevent.Strict},
	{`{"a" 1}`, jevent.Strict},
	{`{"a":1 "b":2}`, jevent.Strict},
	{`{"a":1,"b"}`, jevent.Strict},
	{`{"a":1,`, jevent.Strict},
	{`{,}`, jevent.Strict},
	{`[15,`, jevent.Strict},
	{`[1 2]`, jevent.Strict},
	{`[1,,2]`, jevent.Strict},
	{`[,1]`, jevent.Strict},
	{`["a" "b"]`, jevent.Strict},
	{`:`, jevent.Strict},
	{`,`, jevent.Strict},
	{`1,2`, jevent.Strict},
	{`"a":1`, jevent.Strict},

	// Dialect extensions that are not enabled.
	{`[15,]`, jevent.Strict},
	{`{"a":1,}`, jevent.Strict},
	{`{"a":1,}`, jevent.Comments},
	{`// c`, jevent.Strict},
	{`/* c */ 1`, jevent.Strict},
	{`/* c */ 1`, jevent.LineComment},
	{"// c\n1", jevent.BlockComment},
	{`'a'`, jevent.Strict},
	{`{'a':1}`, jevent.Strict},

	// Malformed comments.
	{`/* open`, jevent.Comments},
	{`[1]/`, jevent.Comments},
	{`[1]/x`, jevent.Comments},

	// Malformed constants and numbers.
	{`forthright`, jevent.Strict},
	{`tru`, jevent.Strict},
	{`nulll`, jevent.Strict},
	{`True`, jevent.Strict},
	{`[01]`, jevent.Strict},
	{`1.`, jevent.Strict},
	{`-`, jevent.Strict},
	{`1e`, jevent.Strict},
	{`1e+`, jevent.Strict},
	{`1.2.3`, jevent.Strict},
	{`--1`, jevent.Strict},
	{`[1-2]`, jevent.Strict},
	{`[+1]`, jevent.Strict},
	{`.`, jevent.Strict},

	// Malformed strings.
	{`"what did you`, jevent.Strict},
	{`"a\qb"`, jevent.Strict},
	{`"\x41"`, jevent.Strict},
	{`"\u12G4"`, jevent.Strict},
	{`"\u12"`, jevent.Strict},
	{`"\`, jevent.Strict},
	{`'abc`, jevent.SingleQuote},
}

// parseTokenizer runs a tokenizer over input divided into chunks, and
// returns the events it reported.
func parseTokenizer(t *testing.T, chunks [][]byte, d jevent.Dialect) (string, error) {
	t.Helper()
	var rec testutil.Recorder
	tok := jevent.NewTokenizer(&rec)
	if err := tok.Configure(d); err != nil {
		t.Fatalf("Configure: unexpected error: %v", err)
	}
	err := testutil.Feed(tok, chunks)
	return rec.Output(), err
}

// parseReader runs a reader over input and returns the events it reported.
func parseReader(r *jevent.Reader) (string, error) {
	var rec testutil.Recorder
	err := r.Parse(&rec)
	return rec.Output(), err
}

// readers returns a reader of each kind for input.
func readers(input string, d jevent.Dialect) map[string]*jevent.Reader {
	return map[string]*jevent.Reader{
		"String": jevent.NewStringReader(input, d),
		"Bytes":  jevent.NewBytesReader([]byte(input), d),
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

func mustSyntaxError(t *testing.T, err error) *jevent.SyntaxError {
	t.Helper()
	var serr *jevent.SyntaxError
	if err == nil {
		t.Fatal("Got nil, want a syntax error")
	} else if !errors.As(err, &serr) {
		t.Fatalf("Got error %[1]v of type %[1]T, want *SyntaxError", err)
	}
	return serr
}
