// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command represents a console verb or a dispatcher over verbs.
type Command struct {
	// Name is the verb as typed by the user (e.g., "ls", "write").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Group names the section of the parent's help listing this command
	// appears under. Ungrouped commands are listed first.
	Group string

	// Description is a detailed description shown in the command's own
	// help output.
	Description string

	// Usage is the usage string (e.g., "write [--compress lz4|zstd] <name> <content>...").
	// If empty, it is synthesized from the command name.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet for this command. Called
	// on every execution so flag values start from their defaults. If
	// nil, the command accepts no flags and receives its arguments
	// verbatim (so "poke 10 -1" passes "-1" through).
	Flags func() *pflag.FlagSet

	// StopAtFirstArg ends flag parsing at the first positional argument,
	// so free-form trailing text (file content, host commands) is never
	// mistaken for flags.
	StopAtFirstArg bool

	// Subcommands are dispatched by the first positional arg.
	Subcommands []*Command

	// Run executes the command with the remaining args (after flag parsing).
	Run func(ctx context.Context, args []string) error

	// Output receives help text. Subcommands inherit their parent's
	// Output; the root defaults to os.Stdout.
	Output io.Writer

	// parent is set during dispatch to build the full command path for help.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and dispatches to the appropriate subcommand or Run
// function.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.output())
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name := args[0]

		// "help <verb>" shows the verb's help; bare "help" shows ours.
		if name == "help" && c.Find("help") == nil {
			return c.help(args[1:])
		}

		if sub := c.Find(name); sub != nil {
			sub.parent = c
			return sub.Execute(ctx, args[1:])
		}
		return c.unknownCommand(name)
	}

	if len(c.Subcommands) > 0 && c.Run == nil {
		if len(args) == 0 {
			c.PrintHelp(c.output())
			return Validation("command required")
		}
		return Validation("command required (got flag %q)", args[0])
	}

	if c.Flags != nil {
		flagSet := c.Flags()

		// pflag's default error output and usage dump would interleave
		// with console output. Errors are formatted here instead.
		flagSet.SetOutput(io.Discard)
		flagSet.SetInterspersed(!c.StopAtFirstArg)

		if err := flagSet.Parse(args); err != nil {
			message := err.Error()
			if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
				// A fresh flag set: the failed parse may have consumed state.
				if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
					return Validation("%s (did you mean %s?). Try '%s --help'.",
						message, suggestion, c.fullName())
				}
			}
			return Validation("%s. Try '%s --help'.", message, c.fullName())
		}
		args = flagSet.Args()
	}

	if c.Run != nil {
		return c.Run(ctx, args)
	}

	c.PrintHelp(c.output())
	return Internal("no action defined for %q", c.fullName())
}

// Find returns the direct subcommand named name, or nil.
func (c *Command) Find(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// Names returns the names of the direct subcommands, in declaration
// order.
func (c *Command) Names() []string {
	names := make([]string, 0, len(c.Subcommands))
	for _, sub := range c.Subcommands {
		names = append(names, sub.Name)
	}
	return names
}

func (c *Command) help(args []string) error {
	if len(args) == 0 {
		c.PrintHelp(c.output())
		return nil
	}
	sub := c.Find(args[0])
	if sub == nil {
		return c.unknownCommand(args[0])
	}
	sub.parent = c
	sub.PrintHelp(c.output())
	return nil
}

func (c *Command) unknownCommand(name string) error {
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return Validation("Unknown command %q (did you mean %q?). Type 'help' for available commands.",
			name, suggestion)
	}
	return Validation("Unknown command %q. Type 'help' for available commands.", name)
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		// The console root has no usage line of its own.
	case c.Flags != nil:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	default:
		fmt.Fprintf(w, "Usage:\n  %s\n", name)
	}

	if len(c.Subcommands) > 0 {
		c.printCommandList(w)
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		var flagHelp strings.Builder
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nType 'help <command>' for more information on a command.\n")
	}
}

// printCommandList writes the subcommands, ungrouped first, then one
// section per group in order of first appearance.
func (c *Command) printCommandList(w io.Writer) {
	var groups []string
	for _, sub := range c.Subcommands {
		if sub.Group != "" && !slices.Contains(groups, sub.Group) {
			groups = append(groups, sub.Group)
		}
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "Commands:\n")
	if c.Find("help") == nil {
		fmt.Fprintf(tw, "  %s\t%s\n", "help", "Show this list, or help for one command")
	}
	for _, group := range append([]string{""}, groups...) {
		if group != "" {
			fmt.Fprintf(tw, "\n%s:\n", group)
		}
		for _, sub := range c.Subcommands {
			if sub.Group == group {
				fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
			}
		}
	}
	tw.Flush()
}

// fullName returns the command path without the root's name, which
// the console never types (e.g., "write").
func (c *Command) fullName() string {
	if c.parent == nil || c.parent.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) output() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.Output != nil {
			return command.Output
		}
	}
	return os.Stdout
}

// isHelpFlag reports whether arg asks for help. The bare word "help" is
// only special to dispatchers: "cat help" reads a file named help.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help"
}
