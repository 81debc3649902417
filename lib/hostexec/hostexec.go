// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostexec runs host commands on behalf of the console's
// system command. The storage engine never calls it; it is a front-end
// capability reached only through a session.
package hostexec

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// ErrNoCommand is returned when the command line is blank.
var ErrNoCommand = errors.New("no command provided")

// Executor runs one command line and reports its exit status.
type Executor interface {
	Execute(ctx context.Context, request Request) (int, error)
}

// Request is one command invocation.
type Request struct {
	// Command is passed to the shell as a single script.
	Command string

	// Environment is the complete environment in KEY=VALUE form. It
	// replaces, rather than extends, the host environment.
	Environment []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Shell runs commands with "sh -c". The shell is resolved through
// PATH.
type Shell struct {
	// Path overrides the shell binary. Empty means "sh".
	Path string
}

// Execute runs the command and waits for it. A non-zero exit is
// reported through the status, not the error; the error is reserved
// for failures to start or wait on the process (including context
// cancellation), in which case the status is -1.
func (s Shell) Execute(ctx context.Context, request Request) (int, error) {
	if strings.TrimSpace(request.Command) == "" {
		return -1, ErrNoCommand
	}
	shell := s.Path
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", request.Command)
	cmd.Env = request.Environment
	cmd.Stdin = request.Stdin
	cmd.Stdout = request.Stdout
	cmd.Stderr = request.Stderr
	configureProcessGroup(cmd)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) && ctx.Err() == nil {
		return exitError.ExitCode(), nil
	}
	return -1, err
}
