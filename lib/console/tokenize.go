// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"strings"

	"github.com/google/shlex"
)

// Line is one command line: the text as typed and its words.
type Line struct {
	Text string
	Args []string
}

// ParseLine splits text into words with [Tokenize].
func ParseLine(text string) (Line, error) {
	args, err := Tokenize(text)
	if err != nil {
		return Line{}, err
	}
	return Line{Text: text, Args: args}, nil
}

// Tokenize splits a command line into words using shell quoting rules.
// Words are separated by unquoted whitespace. Double quotes group text
// and honor backslash escapes; single quotes group text literally. A
// backslash outside quotes escapes the next character. Quotes may join
// adjacent text ("a"b is one word), and "" produces an empty word. An
// unquoted # at the start of a word comments out the rest of the line.
func Tokenize(line string) ([]string, error) {
	return shlex.Split(line)
}

// Rest returns the text of the line that follows its first n words,
// exactly as typed apart from the whitespace before it. It is empty
// when the line has n words or fewer.
func (l Line) Rest(n int) string {
	source := strings.NewReader(l.Text)
	lexer := shlex.NewLexer(oneByteReader{source})
	for range n {
		if _, err := lexer.Next(); err != nil {
			return ""
		}
	}
	consumed := len(l.Text) - source.Len()
	return strings.TrimLeft(l.Text[consumed:], " \t\r\n")
}

// oneByteReader hands the lexer one byte per read, so its buffer never
// runs ahead of the word it is scanning and the bytes left in the
// underlying reader mark exactly where that word ended.
type oneByteReader struct {
	reader *strings.Reader
}

func (r oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return r.reader.Read(p[:1])
}
