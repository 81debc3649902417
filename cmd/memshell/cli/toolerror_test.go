// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolError_AllCategories(t *testing.T) {
	tests := []struct {
		constructor func(string, ...any) *ToolError
		want        ErrorCategory
	}{
		{Validation, CategoryValidation},
		{NotFound, CategoryNotFound},
		{Conflict, CategoryConflict},
		{Internal, CategoryInternal},
	}
	for _, test := range tests {
		err := test.constructor("message %d", 7)
		if err.Category != test.want {
			t.Errorf("Category = %s, want %s", err.Category, test.want)
		}
		if err.Error() != "message 7" {
			t.Errorf("Error() = %q, want %q", err.Error(), "message 7")
		}
	}
}

func TestToolError_Unwrap(t *testing.T) {
	sentinel := errors.New("underlying")
	err := NotFound("File not found: %w", sentinel)
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is does not reach the wrapped sentinel")
	}

	wrapped := fmt.Errorf("dispatch: %w", err)
	if CategoryOf(wrapped) != CategoryNotFound {
		t.Errorf("CategoryOf(wrapped) = %s, want not_found", CategoryOf(wrapped))
	}
	if CategoryOf(sentinel) != CategoryInternal {
		t.Errorf("CategoryOf(plain) = %s, want internal", CategoryOf(sentinel))
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 3 {
		t.Errorf("ExitError does not expose code 3: %v", err)
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
