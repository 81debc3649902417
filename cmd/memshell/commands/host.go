// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"strconv"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
)

func (s *Shell) envCommand() *cli.Command {
	return &cli.Command{
		Name:    "env",
		Summary: "Display environment variables",
		Description: `Print the environment snapshot taken when the console started,
one KEY=VALUE pair per line, sorted. Given a name, print only that
variable's value. Host commands run by system see exactly this
environment.`,
		Usage: "env [name]",
		Run: func(_ context.Context, args []string) error {
			switch len(args) {
			case 0:
				for _, pair := range s.session.Environment() {
					s.printf("%s\n", pair)
				}
				return nil
			case 1:
				value, ok := s.session.Lookup(args[0])
				if !ok {
					return cli.NotFound("Variable %s is not set", args[0])
				}
				s.printf("%s\n", value)
				return nil
			}
			return usage("env [name]")
		},
	}
}

func (s *Shell) systemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Summary: "Execute system command",
		Description: `Run the rest of the line, exactly as typed, with the host shell
using the console's environment snapshot. The console waits for it to finish. A non-zero
exit status is reported but does not end the console.`,
		Usage: "system <command>...",
		Examples: []cli.Example{
			{Description: "List the host's working directory", Command: "system ls -la"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return cli.Validation("No command provided")
			}
			stderr := s.options.Stderr
			if stderr == nil {
				stderr = s.out
			}
			status, err := s.session.Execute(ctx, s.rawArgs(args, 0), s.options.Stdin, s.out, stderr)
			if err != nil {
				return fail(cli.CategoryInternal, "Command failed: "+err.Error(), err)
			}
			if status != 0 {
				s.printf("Command exited with status %d\n", status)
			}
			return nil
		},
	}
}

func (s *Shell) exitCommand() *cli.Command {
	return &cli.Command{
		Name:    "exit",
		Summary: "Exit the console",
		Description: `Stop reading commands. With a status, the process exits with
that status once the console has shut down.`,
		Usage: "exit [status]",
		Run: func(_ context.Context, args []string) error {
			switch len(args) {
			case 0:
				s.session.Stop()
				return nil
			case 1:
				code, err := strconv.Atoi(args[0])
				if err != nil || code < 0 || code > 255 {
					return cli.Validation("Invalid exit status %q", args[0])
				}
				s.session.Stop()
				return &cli.ExitError{Code: code}
			}
			return usage("exit [status]")
		},
	}
}
