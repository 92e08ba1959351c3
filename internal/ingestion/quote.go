package ingestion

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

type quoteState int

const (
	stLineStart quoteState = iota
	stComment
	stFieldStart
	stUnquoted
	stQuoted
)

// quoteTranslator rewrites text quoted with an arbitrary rune into the
// double-quoted form encoding/csv understands. Every field is emitted
// double-quoted, literal '"' is doubled, and a doubled quote rune inside a
// quoted field stands for the rune itself. Blank and comment lines pass
// through untouched so the CSV reader still skips them.
type quoteTranslator struct {
	src     *bufio.Reader
	quote   rune
	delim   rune
	comment rune

	state     quoteState
	line      int
	quoteLine int

	buf []byte
	pos int
	err error
}

func newQuoteTranslator(src *bufio.Reader, quote, delim, comment rune) *quoteTranslator {
	return &quoteTranslator{
		src:     src,
		quote:   quote,
		delim:   delim,
		comment: comment,
		line:    1,
	}
}

func (t *quoteTranslator) Read(p []byte) (int, error) {
	for t.pos == len(t.buf) {
		if t.err != nil {
			return 0, t.err
		}
		t.buf, t.pos = t.buf[:0], 0
		t.step()
	}
	n := copy(p, t.buf[t.pos:])
	t.pos += n
	return n, nil
}

func (t *quoteTranslator) step() {
	r, _, err := t.src.ReadRune()
	if err != nil {
		t.finish(err)
		return
	}
	if r == '\n' {
		t.line++
	}

	switch t.state {
	case stLineStart:
		switch {
		case r == '\n' || r == '\r':
			t.emitRune(r)
		case t.comment != 0 && r == t.comment:
			t.emitRune(r)
			t.state = stComment
		default:
			t.startField(r)
		}
	case stComment:
		t.emitRune(r)
		if r == '\n' {
			t.state = stLineStart
		}
	case stFieldStart:
		t.startField(r)
	case stUnquoted:
		t.unquoted(r)
	case stQuoted:
		t.quoted(r)
	}
}

func (t *quoteTranslator) startField(r rune) {
	t.buf = append(t.buf, '"')
	if r == t.quote {
		t.state = stQuoted
		t.quoteLine = t.line
		return
	}
	t.state = stUnquoted
	t.unquoted(r)
}

func (t *quoteTranslator) unquoted(r rune) {
	switch r {
	case t.delim:
		t.buf = append(t.buf, '"')
		t.emitRune(r)
		t.state = stFieldStart
	case '\n':
		t.buf = append(t.buf, '"', '\n')
		t.state = stLineStart
	case '\r':
		if next, err := t.src.Peek(1); err == nil && next[0] == '\n' {
			t.src.Discard(1)
			t.line++
			t.buf = append(t.buf, '"', '\n')
			t.state = stLineStart
			return
		}
		t.emitRune(r)
	case '"':
		t.buf = append(t.buf, '"', '"')
	default:
		t.emitRune(r)
	}
}

func (t *quoteTranslator) quoted(r rune) {
	switch r {
	case t.quote:
		next, _, err := t.src.ReadRune()
		if err == nil && next == t.quote {
			t.emitRune(r)
			return
		}
		if err == nil {
			t.src.UnreadRune()
		}
		// Text after the closing quote joins the same field.
		t.state = stUnquoted
	case '"':
		t.buf = append(t.buf, '"', '"')
	default:
		t.emitRune(r)
	}
}

func (t *quoteTranslator) finish(err error) {
	if err != io.EOF {
		t.err = err
		return
	}
	switch t.state {
	case stFieldStart:
		t.buf = append(t.buf, '"', '"')
	case stUnquoted:
		t.buf = append(t.buf, '"')
	case stQuoted:
		t.err = fmt.Errorf("field opened with %q on line %d: %w", t.quote, t.quoteLine, ErrUnterminatedQuote)
		return
	}
	t.err = io.EOF
}

func (t *quoteTranslator) emitRune(r rune) {
	t.buf = utf8.AppendRune(t.buf, r)
}
