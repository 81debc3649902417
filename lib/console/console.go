// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// maxLineLength bounds a single command line in line mode. write takes
// its content inline, so lines can be long.
const maxLineLength = 16 * 1024 * 1024

// Dispatcher executes tokenized command lines.
type Dispatcher interface {
	// Dispatch runs one command. line.Args holds at least one word.
	// Output intended for the user goes to out. A returned error is a failed command: its message is shown
	// and the console keeps reading, unless the error carries an exit
	// code (an ExitCode() int method), which ends the console.
	Dispatch(ctx context.Context, line Line, out io.Writer) error

	// Prompt returns the text shown before the input line.
	Prompt() string

	// Candidates returns completions for the word following words.
	Candidates(words []string) []string

	// Running reports whether the console should keep reading.
	Running() bool
}

type exitCoder interface {
	ExitCode() int
}

// execute tokenizes and dispatches one line, writing user-visible
// output (including failure messages) to output. It returns an error
// only when the console must stop.
func execute(ctx context.Context, dispatcher Dispatcher, text string, output io.Writer, logger *slog.Logger) error {
	line, err := ParseLine(text)
	if err != nil {
		fmt.Fprintf(output, "Invalid command line: %v\n", err)
		return nil
	}
	if len(line.Args) == 0 {
		return nil
	}

	err = dispatcher.Dispatch(ctx, line, output)
	if err == nil {
		return nil
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		logger.Debug("exit requested", "command", line.Args[0], "code", coder.ExitCode())
		return err
	}
	fmt.Fprintln(output, err.Error())
	return nil
}

// Options configures both front ends.
type Options struct {
	// Input supplies command lines (line mode) or keystrokes
	// (interactive mode). Defaults to os.Stdin.
	Input io.Reader

	// Output receives command output. Defaults to os.Stdout.
	Output io.Writer

	// Logger receives console diagnostics. Nil discards them.
	Logger *slog.Logger

	// Logs, when set, is drained after every interactive command and
	// its records printed above the prompt. Line mode ignores it.
	Logs *LogHandler
}

func (options Options) withDefaults() Options {
	if options.Input == nil {
		options.Input = os.Stdin
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return options
}

// lineReaders counts RunLines reader goroutines still running.
var lineReaders sync.WaitGroup

// RunLines reads one command per line from Input until EOF, until the
// dispatcher stops running, or until ctx is cancelled. No prompt is
// printed. A cancelled context prints "Exiting..." and returns nil; the
// line being read is abandoned.
//
// RunLines returns nil on a normal end, an error carrying an exit code
// when a command asked for one, or a read error.
func RunLines(ctx context.Context, dispatcher Dispatcher, options Options) error {
	options = options.withDefaults()
	input, output, logger := options.Input, options.Output, options.Logger

	// done releases the reader when RunLines returns with lines still
	// unread. A reader blocked inside Read stays blocked until Input
	// yields, but it never blocks on handing over a line.
	lines := make(chan string)
	readDone := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	lineReaders.Add(1)
	go func() {
		defer lineReaders.Done()
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readDone <- scanner.Err()
	}()

	for dispatcher.Running() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(output, "\nExiting...")
			return nil
		case line := <-lines:
			if err := execute(ctx, dispatcher, line, output, logger); err != nil {
				return err
			}
		case err := <-readDone:
			if err != nil {
				return fmt.Errorf("reading commands: %w", err)
			}
			return nil
		}
	}
	return nil
}

// capture runs one line with output collected into a string, for the
// interactive front end.
func capture(ctx context.Context, dispatcher Dispatcher, line string, logger *slog.Logger) (string, error) {
	var buffer bytes.Buffer
	err := execute(ctx, dispatcher, line, &buffer, logger)
	return buffer.String(), err
}
