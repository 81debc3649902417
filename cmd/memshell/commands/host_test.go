// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"slices"
	"testing"
)

func TestEnv(t *testing.T) {
	shell := newTestShell(t, Options{})
	runSteps(t, shell, []step{
		{line: "env", wantOutput: "ALPHA=1\nHOME=/home/test\n"},
		{line: "env HOME", wantOutput: "/home/test\n"},
		{line: "env MISSING", wantErr: "Variable MISSING is not set"},
		{line: "env HOME ALPHA", wantErr: "Usage: env [name]"},
	})
}

func TestSystem(t *testing.T) {
	shell := newTestShell(t, Options{})
	shell.executor.output = "host says hi\n"

	runSteps(t, shell, []step{
		{line: `system echo "a b" | wc -c`, wantOutput: "host says hi\n"},
		{line: "system", wantErr: "No command provided"},
	})

	if len(shell.executor.requests) != 1 {
		t.Fatalf("executor ran %d commands, want 1", len(shell.executor.requests))
	}
	request := shell.executor.requests[0]
	if request.Command != `echo "a b" | wc -c` {
		t.Errorf("Command = %q", request.Command)
	}
	if !slices.Equal(request.Environment, []string{"ALPHA=1", "HOME=/home/test"}) {
		t.Errorf("Environment = %q, want the session snapshot", request.Environment)
	}
	if request.Stdin != nil {
		t.Error("host command received stdin without Options.Stdin")
	}
}

func TestSystemFailures(t *testing.T) {
	shell := newTestShell(t, Options{})

	shell.executor.status = 2
	runSteps(t, shell, []step{
		{line: "system false", wantOutput: "Command exited with status 2\n"},
	})

	shell.executor.status = -1
	shell.executor.err = errors.New("sh: not found")
	runSteps(t, shell, []step{
		{line: "system missing-binary", wantErr: "Command failed: sh: not found"},
	})
	if !shell.Running() {
		t.Error("a failed host command stopped the console")
	}
}

func TestExit(t *testing.T) {
	shell := newTestShell(t, Options{})
	if _, err := shell.run(t, "exit now"); err == nil || err.Error() != `Invalid exit status "now"` {
		t.Errorf("exit now: err = %v", err)
	}
	if !shell.Running() {
		t.Fatal("invalid exit stopped the console")
	}
	if _, err := shell.run(t, "exit"); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if shell.Running() {
		t.Error("console still running after exit")
	}

	shell = newTestShell(t, Options{})
	_, err := shell.run(t, "exit 3")
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 3 {
		t.Errorf("exit 3: err = %v, want exit code 3", err)
	}
	if shell.Running() {
		t.Error("console still running after exit 3")
	}
}
