// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/hostexec"
	"github.com/bureau-foundation/memshell/lib/namespace"
)

// recordingExecutor captures requests instead of running them.
type recordingExecutor struct {
	requests []hostexec.Request
	status   int
}

func (r *recordingExecutor) Execute(_ context.Context, request hostexec.Request) (int, error) {
	r.requests = append(r.requests, request)
	return r.status, nil
}

func newSession(t *testing.T, executor hostexec.Executor) *Session {
	t.Helper()
	storage, err := engine.New(engine.Config{Capacity: 64 * 1024, DataStart: 4096})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	session, err := New(Config{
		Engine:      storage,
		Environment: []string{"ZED=last", "HOME=/home/test", "ALPHA=first"},
		Executor:    executor,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := session.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return session
}

func TestChangeDirectory(t *testing.T) {
	session := newSession(t, nil)
	if _, err := session.Engine().Mkdir(namespace.Root, "d"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	steps := []struct {
		path    string
		want    string
		wantErr error
	}{
		{"d", "/d", nil},
		{"..", "/", nil},
		{"..", "/", nil},
		{"/d", "/d", nil},
		{"/", "/", nil},
		{"missing", "/", namespace.ErrNotFound},
	}
	for _, step := range steps {
		err := session.ChangeDirectory(step.path)
		if step.wantErr != nil {
			if !errors.Is(err, step.wantErr) {
				t.Fatalf("cd %s: err = %v, want %v", step.path, err, step.wantErr)
			}
		} else if err != nil {
			t.Fatalf("cd %s: %v", step.path, err)
		}
		if got := session.WorkingPath(); got != step.want {
			t.Fatalf("after cd %s: pwd = %q, want %q", step.path, got, step.want)
		}
	}
}

func TestChangeDirectoryToFile(t *testing.T) {
	session := newSession(t, nil)
	if _, err := session.Engine().Touch(namespace.Root, "f"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := session.ChangeDirectory("f"); !errors.Is(err, namespace.ErrNotADirectory) {
		t.Errorf("cd f: err = %v, want ErrNotADirectory", err)
	}
	if session.WorkingDirectory() != namespace.Root {
		t.Error("failed cd changed the working directory")
	}
}

func TestRemovedWorkingDirectoryFallsBackToRoot(t *testing.T) {
	session := newSession(t, nil)
	if _, err := session.Engine().Mkdir(namespace.Root, "d"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := session.ChangeDirectory("d"); err != nil {
		t.Fatalf("cd d: %v", err)
	}
	if err := session.Engine().Remove(namespace.Root, "d"); err != nil {
		t.Fatalf("Remove(d): %v", err)
	}
	// A new directory may reuse the slot; the stale handle must not
	// follow it.
	if _, err := session.Engine().Mkdir(namespace.Root, "other"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if got := session.WorkingPath(); got != "/" {
		t.Errorf("pwd = %q after removing the working directory, want /", got)
	}
}

func TestEnvironmentSnapshot(t *testing.T) {
	session := newSession(t, nil)

	want := []string{"ALPHA=first", "HOME=/home/test", "ZED=last"}
	environment := session.Environment()
	if !slices.Equal(environment, want) {
		t.Errorf("Environment() = %v, want %v", environment, want)
	}
	environment[0] = "MUTATED=1"
	if session.Environment()[0] != "ALPHA=first" {
		t.Error("Environment() exposes internal slice")
	}
	if value, ok := session.Lookup("HOME"); !ok || value != "/home/test" {
		t.Errorf("Lookup(HOME) = %q, %v", value, ok)
	}
	if _, ok := session.Lookup("MISSING"); ok {
		t.Error("Lookup(MISSING) found a value")
	}
}

func TestExecutePassesSnapshot(t *testing.T) {
	executor := &recordingExecutor{status: 3}
	session := newSession(t, executor)

	status, err := session.Execute(context.Background(), "ls -l", nil, nil, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if status != 3 {
		t.Errorf("status = %d, want 3", status)
	}
	if len(executor.requests) != 1 {
		t.Fatalf("executor saw %d requests, want 1", len(executor.requests))
	}
	request := executor.requests[0]
	if request.Command != "ls -l" || !slices.Equal(request.Environment, session.Environment()) {
		t.Errorf("request = %+v", request)
	}
}

func TestStop(t *testing.T) {
	session := newSession(t, nil)
	if !session.Running() {
		t.Fatal("new session is not running")
	}
	session.Stop()
	if session.Running() {
		t.Error("session still running after Stop")
	}
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New without engine succeeded")
	}
}
