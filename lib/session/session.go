// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the per-console state that sits above the
// storage engine: the current directory, the environment snapshot
// taken at startup, the running flag, and the host command executor.
//
// A Session is constructed explicitly and passed to every command.
// Nothing in memshell keeps console state in package variables.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/hostexec"
	"github.com/bureau-foundation/memshell/lib/namespace"
)

// Config holds the parameters for [New].
type Config struct {
	// Engine is required. The session takes ownership and closes it.
	Engine *engine.Engine

	// Environment is the snapshot exposed by the env command and given
	// to host commands, in KEY=VALUE form. Nil snapshots os.Environ.
	Environment []string

	// Executor runs host commands. Nil selects hostexec.Shell.
	Executor hostexec.Executor

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger
}

// Session is one console's state. It is not safe for concurrent use.
type Session struct {
	engine      *engine.Engine
	cwd         namespace.EntryID
	environment []string
	executor    hostexec.Executor
	logger      *slog.Logger
	running     bool
}

// New creates a running session positioned at the root directory.
func New(config Config) (*Session, error) {
	if config.Engine == nil {
		return nil, fmt.Errorf("session requires an engine")
	}
	environment := config.Environment
	if environment == nil {
		environment = os.Environ()
	}
	environment = slices.Clone(environment)
	slices.Sort(environment)

	if config.Executor == nil {
		config.Executor = hostexec.Shell{}
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		engine:      config.Engine,
		cwd:         namespace.Root,
		environment: environment,
		executor:    config.Executor,
		logger:      config.Logger,
		running:     true,
	}, nil
}

// Engine returns the storage engine.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// WorkingDirectory returns the current directory. If the directory was
// removed out from under the session, the session moves back to the
// root.
func (s *Session) WorkingDirectory() namespace.EntryID {
	if _, err := s.engine.Lookup(s.cwd); err != nil {
		s.logger.Debug("working directory removed, returning to root", "entry", s.cwd.String())
		s.cwd = namespace.Root
	}
	return s.cwd
}

// WorkingPath returns the absolute path of the current directory.
func (s *Session) WorkingPath() string {
	path, err := s.engine.Path(s.WorkingDirectory())
	if err != nil {
		return "/"
	}
	return path
}

// ChangeDirectory moves to the directory at path, resolved from the
// current directory. On error the current directory is unchanged.
func (s *Session) ChangeDirectory(path string) error {
	entry, err := s.engine.Resolve(s.WorkingDirectory(), path)
	if err != nil {
		return err
	}
	if !entry.IsDirectory() {
		return fmt.Errorf("%q: %w", path, namespace.ErrNotADirectory)
	}
	s.cwd = entry.ID
	return nil
}

// Environment returns a copy of the environment snapshot, sorted.
func (s *Session) Environment() []string {
	return slices.Clone(s.environment)
}

// Lookup returns the value of key in the environment snapshot.
func (s *Session) Lookup(key string) (string, bool) {
	for _, pair := range s.environment {
		name, value, found := strings.Cut(pair, "=")
		if found && name == key {
			return value, true
		}
	}
	return "", false
}

// Execute runs a host command with the environment snapshot and
// returns its exit status.
func (s *Session) Execute(ctx context.Context, command string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	status, err := s.executor.Execute(ctx, hostexec.Request{
		Command:     command,
		Environment: s.environment,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
	})
	s.logger.Debug("host command finished", "command", command, "status", status, "error", err)
	return status, err
}

// Stop marks the session as finished. The console loop exits before
// reading the next line.
func (s *Session) Stop() {
	s.running = false
}

// Running reports whether the session has not been stopped.
func (s *Session) Running() bool {
	return s.running
}

// Close stops the session and releases the engine's backing store.
func (s *Session) Close() error {
	s.running = false
	return s.engine.Close()
}
