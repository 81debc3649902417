// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// memshell is an interactive console over one resizable region of
// process memory. The region holds a small hierarchical file system
// whose files are byte ranges placed first-fit in the data region;
// peek, poke, and resize reach under the file system to the raw bytes.
//
// When stdin and stdout are terminals memshell runs a full-screen
// prompt with history and tab completion. Otherwise it reads one
// command per line from stdin, which makes it scriptable:
//
//	printf 'mkdir docs\ncd docs\ntouch a\nwrite a hello\ncat a\n' | memshell --size 64M
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
	"github.com/bureau-foundation/memshell/cmd/memshell/commands"
	"github.com/bureau-foundation/memshell/lib/config"
	"github.com/bureau-foundation/memshell/lib/console"
	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/session"
	"github.com/bureau-foundation/memshell/lib/units"
	"github.com/bureau-foundation/memshell/lib/version"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		size        string
		limit       string
		logLevel    string
		interactive string
	)

	flagSet := pflag.NewFlagSet("memshell", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML or JSONC config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVarP(&size, "size", "s", "", "initial memory size, e.g. 2G or 512MB (overrides memory.initial_size)")
	flagSet.StringVar(&limit, "limit", "", "largest size the memory may ever be resized to (overrides memory.limit)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn, or error (overrides log.level)")
	flagSet.StringVar(&interactive, "interactive", "", "auto, always, or never (overrides console.interactive)")
	flagSet.Bool("version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works alongside any
	// other arguments.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print(os.Stdout, "memshell")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		version.Print(os.Stdout, "memshell")
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (commands are read from stdin)", flagSet.Arg(0))
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("size") {
		cfg.Memory.InitialSize = size
	}
	if flagSet.Changed("limit") {
		cfg.Memory.Limit = limit
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("interactive") {
		cfg.Console.Interactive = config.InteractiveMode(interactive)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sizes, err := cfg.Sizes()
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	useInteractive := interactiveMode(cfg.Console.Interactive)

	var logs *console.LogHandler
	var logger *slog.Logger
	if useInteractive {
		// Records written to stderr would tear the prompt; queue them
		// and print them between commands instead.
		logs = console.NewLogHandler(level)
		logger = slog.New(logs)
	} else {
		logger = cli.NewCommandLogger(level)
	}

	memory, err := engine.New(engine.Config{
		Capacity:  sizes.Initial,
		Limit:     sizes.Limit,
		DataStart: sizes.Reserved,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to allocate initial memory (%s): %w", units.Format(sizes.Initial), err)
	}

	sess, err := session.New(session.Config{
		Engine: memory,
		Logger: logger,
	})
	if err != nil {
		memory.Close()
		return err
	}
	defer sess.Close()

	// Host commands run by system get no stdin. In line mode stdin
	// carries the command script, and in interactive mode the terminal
	// belongs to the prompt.
	shell := commands.New(sess, commands.Options{
		Stderr:       os.Stderr,
		PromptSuffix: cfg.Console.PromptSuffix,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("console starting",
		"interactive", useInteractive,
		"capacity", sizes.Initial,
		"limit", sizes.Limit,
		"reserved", sizes.Reserved,
	)

	consoleOptions := console.Options{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logger,
		Logs:   logs,
	}
	if useInteractive {
		return console.RunInteractive(ctx, shell, consoleOptions)
	}
	return console.RunLines(ctx, shell, consoleOptions)
}

// loadConfig reads the file named by --config, falling back to the
// environment variable and then to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// interactiveMode resolves auto against the terminal state of stdin and
// stdout.
func interactiveMode(mode config.InteractiveMode) bool {
	switch mode {
	case config.InteractiveAlways:
		return true
	case config.InteractiveNever:
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `memshell - interactive console over a resizable memory region

Usage: memshell [flags]

Commands are read from stdin. Type 'help' at the prompt for the list of
commands.

Flags:
%s`, flagSet.FlagUsages())
}
