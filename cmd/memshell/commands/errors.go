// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/backing"
	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/namespace"
)

// failure pairs the message shown to the user with the error that
// caused it.
type failure struct {
	message string
	cause   error
}

func (f *failure) Error() string { return f.message }

func (f *failure) Unwrap() error { return f.cause }

func fail(category cli.ErrorCategory, message string, cause error) *cli.ToolError {
	return &cli.ToolError{Category: category, Err: &failure{message: message, cause: cause}}
}

// causeOf returns the error behind a user-facing message, or err itself.
func causeOf(err error) error {
	var f *failure
	if errors.As(err, &f) && f.cause != nil {
		return f.cause
	}
	return err
}

// describe maps an engine error to the console's wording. missing is
// the message for a name that does not resolve to the kind of entry the
// command needs; it differs per command.
func describe(err error, missing string) error {
	switch {
	case errors.Is(err, namespace.ErrNotFound),
		errors.Is(err, namespace.ErrNotADirectory),
		errors.Is(err, engine.ErrIsDirectory):
		return fail(cli.CategoryNotFound, missing, err)
	case errors.Is(err, namespace.ErrAlreadyExists):
		return fail(cli.CategoryConflict, "Name already exists", err)
	case errors.Is(err, namespace.ErrNotEmpty):
		return fail(cli.CategoryConflict, "Directory not empty", err)
	case errors.Is(err, namespace.ErrRootRemoval):
		return fail(cli.CategoryValidation, "Cannot remove the root directory", err)
	case errors.Is(err, namespace.ErrInvalidName):
		return fail(cli.CategoryValidation, "Invalid name", err)
	case errors.Is(err, alloc.ErrNoSpace):
		return fail(cli.CategoryConflict, "Not enough space", err)
	case errors.Is(err, backing.ErrOutOfRange):
		return fail(cli.CategoryValidation, "Invalid offset", err)
	case errors.Is(err, backing.ErrOutOfMemory):
		return fail(cli.CategoryInternal, "Out of memory", err)
	}
	return fail(cli.CategoryInternal, "Internal error: "+err.Error(), err)
}

func usage(command string) error {
	return cli.Validation("Usage: %s", command)
}
