// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
	"github.com/bureau-foundation/memshell/lib/console"
	"github.com/bureau-foundation/memshell/lib/session"
	"github.com/bureau-foundation/memshell/lib/units"
)

// fileSystemGroup is the help section for namespace commands.
const fileSystemGroup = "File System Commands"

// Options configures a [Shell].
type Options struct {
	// Stdin is given to host commands run by system. Nil gives them
	// no input.
	Stdin io.Reader

	// Stderr receives host command error output. Nil sends it to the
	// same writer as command output.
	Stderr io.Writer

	// PromptSuffix follows the working directory in the prompt.
	// Empty selects "> ".
	PromptSuffix string

	// Logger receives debug records for failed commands. Nil discards
	// them.
	Logger *slog.Logger
}

// Shell dispatches console lines to the memshell verbs. It is not safe
// for concurrent use.
type Shell struct {
	session *session.Session
	options Options
	logger  *slog.Logger
	root    *cli.Command

	// out is the writer of the command being dispatched.
	out io.Writer

	// line is the command line being dispatched.
	line console.Line
}

// New builds the command tree over sess.
func New(sess *session.Session, options Options) *Shell {
	if options.PromptSuffix == "" {
		options.PromptSuffix = "> "
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	shell := &Shell{
		session: sess,
		options: options,
		logger:  options.Logger,
		out:     os.Stdout,
	}
	shell.root = &cli.Command{
		Name: "memshell",
		Description: `memshell keeps a small hierarchical file system inside one
resizable memory buffer. Files live in the buffer's data region; the
buffer itself can be inspected and patched byte by byte.`,
		Subcommands: []*cli.Command{
			shell.envCommand(),
			shell.peekCommand(),
			shell.pokeCommand(),
			shell.systemCommand(),
			shell.memsizeCommand(),
			shell.resizeCommand(),
			shell.metaCommand(),
			shell.exitCommand(),

			shell.lsCommand(),
			shell.cdCommand(),
			shell.pwdCommand(),
			shell.mkdirCommand(),
			shell.touchCommand(),
			shell.writeCommand(),
			shell.catCommand(),
			shell.rmCommand(),
			shell.dfCommand(),
			shell.statCommand(),
			shell.sumCommand(),
		},
	}
	return shell
}

// Dispatch runs one tokenized command line, writing its output to out.
// The returned error's message is the text to show the user; an
// error carrying an exit code ends the console.
func (s *Shell) Dispatch(ctx context.Context, line console.Line, out io.Writer) error {
	if len(line.Args) == 0 {
		return nil
	}
	s.out = out
	s.root.Output = out
	s.line = line

	err := s.root.Execute(ctx, line.Args)
	if err != nil {
		s.logger.Debug("command failed",
			"command", line.Args[0],
			"category", string(cli.CategoryOf(err)),
			"error", causeOf(err),
		)
	}
	return err
}

// rawArgs returns the text of the line being dispatched from the word
// skip places into args onward, as typed. args is what the verb's Run
// received, always a tail of the line's words.
func (s *Shell) rawArgs(args []string, skip int) string {
	return s.line.Rest(len(s.line.Args) - len(args) + skip)
}

// Prompt returns the working directory followed by the prompt suffix.
func (s *Shell) Prompt() string {
	return s.session.WorkingPath() + s.options.PromptSuffix
}

// Candidates returns completions for the word after words: verb names
// for the first word and after help, otherwise the names in the
// working directory.
func (s *Shell) Candidates(words []string) []string {
	if len(words) == 0 || (len(words) == 1 && words[0] == "help") {
		return append([]string{"help"}, s.root.Names()...)
	}
	entries, err := s.session.Engine().List(s.session.WorkingDirectory(), "")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

// Running reports whether the session is still accepting commands.
func (s *Shell) Running() bool {
	return s.session.Running()
}

// Banner is the greeting printed when an interactive console starts.
func (s *Shell) Banner() string {
	return fmt.Sprintf("Memory Console (Initially allocated: %s)\nType 'help' for available commands",
		units.Format(s.session.Engine().Capacity()))
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
