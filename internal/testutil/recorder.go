// Package testutil defines support code for unit tests.
package testutil

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jevent"
)

// A Recorder is a jevent.Handler that renders each event it receives as a
// line of text. If Fail is set, it is called before each event and any error
// it reports is returned to the parser.
type Recorder struct {
	buf  bytes.Buffer
	Fail func(event string) error
}

func (r *Recorder) pr(msg string, args ...any) error {
	line := fmt.Sprintf(msg, args...)
	if r.Fail != nil {
		if err := r.Fail(line); err != nil {
			return err
		}
	}
	r.buf.WriteString(line)
	r.buf.WriteByte('\n')
	return nil
}

// Output returns the events recorded so far, one per line.
func (r *Recorder) Output() string { return r.buf.String() }

// Lines returns the events recorded so far as a slice.
func (r *Recorder) Lines() []string {
	return strings.Split(strings.TrimSpace(r.buf.String()), "\n")
}

// Reset discards the events recorded so far.
func (r *Recorder) Reset() { r.buf.Reset() }

// Mark records a separator line, to delimit events in test output.
func (r *Recorder) Mark(label string) { r.buf.WriteString(label + "\n") }

func (r *Recorder) BeginObject() error { return r.pr("BeginObject") }
func (r *Recorder) EndObject() error   { return r.pr("EndObject") }
func (r *Recorder) BeginArray() error  { return r.pr("BeginArray") }
func (r *Recorder) EndArray() error    { return r.pr("EndArray") }
func (r *Recorder) Null() error        { return r.pr("Null") }

func (r *Recorder) Key(name string) error { return r.pr("Key %s", jevent.Quote(name)) }
func (r *Recorder) Bool(v bool) error     { return r.pr("Bool %v", v) }
func (r *Recorder) Int(v int64) error     { return r.pr("Int %d", v) }
func (r *Recorder) String(s string) error { return r.pr("String %s", jevent.Quote(s)) }

func (r *Recorder) Float(v float64) error {
	return r.pr("Float %s", strconv.FormatFloat(v, 'g', -1, 64))
}

func (r *Recorder) Decimal(v jevent.Decimal) error { return r.pr("Decimal %s", v) }

// Split divides data into chunks ending at each of the given offsets, which
// must be increasing. The remainder of data after the last offset is the
// final chunk. Empty chunks are included.
func Split(data []byte, offsets ...int) [][]byte {
	var out [][]byte
	last := 0
	for _, off := range offsets {
		out = append(out, data[last:off])
		last = off
	}
	return append(out, data[last:])
}

// Chunks divides data into chunks of n bytes each; the last may be shorter.
func Chunks(data []byte, n int) [][]byte {
	var out [][]byte
	for len(data) > n {
		out = append(out, data[:n])
		data = data[n:]
	}
	return append(out, data)
}

// Feed runs a complete tokenizer run over the given chunks.
func Feed(t *jevent.Tokenizer, chunks [][]byte) error {
	t.Start()
	for _, c := range chunks {
		if err := t.Update(c); err != nil {
			return err
		}
	}
	return t.Finish()
}
