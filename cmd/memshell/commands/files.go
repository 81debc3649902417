// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
	"github.com/bureau-foundation/memshell/lib/console"
	"github.com/bureau-foundation/memshell/lib/digest"
	"github.com/bureau-foundation/memshell/lib/compress"
	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/namespace"
	"github.com/bureau-foundation/memshell/lib/units"
)

// Not-found wording differs per command.
const (
	missingDirectory = "Directory not found"
	missingFile      = "File not found or is a directory"
	missingEntry     = "File or directory not found"
)

type lsParams struct {
	Long bool `flag:"long,l" desc:"show entry IDs, stored and decoded sizes, compression, and modification times"`
}

func (s *Shell) lsCommand() *cli.Command {
	var params lsParams
	return &cli.Command{
		Name:    "ls",
		Summary: "List files in current directory",
		Group:   fileSystemGroup,
		Description: `List a directory in creation order. Each line shows the kind (d or
f), the stored size in bytes, and the name. With -l each line also
shows the entry ID, the content length, the compression, the
modification time, and a short content digest for files.`,
		Usage: "ls [-l] [path]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ls", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 1 {
				return usage("ls [-l] [path]")
			}
			storage := s.session.Engine()
			cwd := s.session.WorkingDirectory()

			target := cwd
			if len(args) == 1 {
				entry, err := storage.Resolve(cwd, args[0])
				if err != nil {
					return describe(err, missingDirectory)
				}
				if !entry.IsDirectory() {
					return describe(fmt.Errorf("%q: %w", args[0], namespace.ErrNotADirectory), missingDirectory)
				}
				target = entry.ID
			}
			path, err := storage.Path(target)
			if err != nil {
				return describe(err, missingDirectory)
			}
			entries, err := storage.List(target, "")
			if err != nil {
				return describe(err, missingDirectory)
			}

			s.printf("Contents of %s:\n", path)
			if !params.Long {
				for _, entry := range entries {
					s.printf("%s %10d %s\n", kindLetter(entry), entry.Size, entry.Name)
				}
				return nil
			}

			writer := tabwriter.NewWriter(s.out, 2, 0, 2, ' ', 0)
			for _, entry := range entries {
				short := "-"
				if !entry.IsDirectory() {
					sum, err := storage.Sum(target, entry.Name)
					if err != nil {
						return describe(err, missingFile)
					}
					short = sum.Short()
				}
				fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
					kindLetter(entry), entry.ID, entry.Size, entry.Length,
					entry.Compression, entry.Modified.UTC().Format(time.DateTime), short, entry.Name)
			}
			return writer.Flush()
		},
	}
}

func kindLetter(entry namespace.Entry) string {
	if entry.IsDirectory() {
		return "d"
	}
	return "f"
}

func (s *Shell) cdCommand() *cli.Command {
	return &cli.Command{
		Name:    "cd",
		Summary: "Change directory",
		Group:   fileSystemGroup,
		Description: `Change the working directory. Paths may be absolute or relative and
may contain "." and ".." segments.`,
		Usage: "cd <path>",
		Examples: []cli.Example{
			{Description: "Return to the root", Command: "cd /"},
			{Description: "Enter a nested directory", Command: "cd projects/memshell"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("cd <path>")
			}
			if err := s.session.ChangeDirectory(args[0]); err != nil {
				return describe(err, missingDirectory)
			}
			return nil
		},
	}
}

func (s *Shell) pwdCommand() *cli.Command {
	return &cli.Command{
		Name:    "pwd",
		Summary: "Print working directory",
		Group:   fileSystemGroup,
		Usage:   "pwd",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return usage("pwd")
			}
			s.printf("%s\n", s.session.WorkingPath())
			return nil
		},
	}
}

func (s *Shell) mkdirCommand() *cli.Command {
	return &cli.Command{
		Name:    "mkdir",
		Summary: "Create directory",
		Group:   fileSystemGroup,
		Description: `Create a directory. The parent directory must already exist; names
must be unique within a directory.`,
		Usage: "mkdir <name>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("mkdir <name>")
			}
			if _, err := s.session.Engine().Mkdir(s.session.WorkingDirectory(), args[0]); err != nil {
				return describe(err, missingDirectory)
			}
			s.printf("Directory created\n")
			return nil
		},
	}
}

func (s *Shell) touchCommand() *cli.Command {
	return &cli.Command{
		Name:    "touch",
		Summary: "Create empty file",
		Group:   fileSystemGroup,
		Usage:   "touch <name>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("touch <name>")
			}
			_, err := s.session.Engine().Touch(s.session.WorkingDirectory(), args[0])
			if errors.Is(err, namespace.ErrAlreadyExists) {
				return fail(cli.CategoryConflict, "File already exists", err)
			}
			if err != nil {
				return describe(err, missingDirectory)
			}
			s.printf("File created\n")
			return nil
		},
	}
}

type writeParams struct {
	Compress string `flag:"compress,c" desc:"store content compressed with lz4 or zstd" default:"none"`
}

func (s *Shell) writeCommand() *cli.Command {
	var params writeParams
	return &cli.Command{
		Name:    "write",
		Summary: "Write content to file",
		Group:   fileSystemGroup,
		Description: `Replace the content of an existing file with the rest of the line
after the name, exactly as typed. Content that is one quoted word is
stored without its quotes. The new content goes into the first free
block large enough for it; the file's previous block is released
afterwards, not reused in place.

With --compress the content is stored compressed when that makes it
smaller, and stored as-is otherwise. cat always prints the original
bytes.`,
		Usage: "write [--compress lz4|zstd] <name> <content>...",
		Examples: []cli.Example{
			{Description: "Store a greeting", Command: `write notes "hello world"`},
			{Description: "Store compressed", Command: "write --compress zstd log aaaaaaaaaaaaaaaaaaaaaaaa"},
		},
		StopAtFirstArg: true,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("write", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				return usage("write [--compress lz4|zstd] <name> <content>...")
			}
			tag, err := compress.ParseTag(params.Compress)
			if err != nil {
				return fail(cli.CategoryValidation,
					fmt.Sprintf("Invalid compression %q (want none, lz4, or zstd)", params.Compress), err)
			}
			content := writeContent(s.rawArgs(args, 1))
			entry, err := s.session.Engine().Write(s.session.WorkingDirectory(), args[0], []byte(content),
				engine.WriteOptions{Compression: tag})
			if err != nil {
				return describe(err, missingFile)
			}
			if tag != compress.None {
				s.printf("Content written (%d bytes stored as %d, %s)\n", entry.Length, entry.Size, entry.Compression)
				return nil
			}
			s.printf("Content written\n")
			return nil
		},
	}
}

// writeContent returns the content of a write from the raw text after
// the file name. A lone quoted word loses its quotes; anything else is
// kept byte for byte.
func writeContent(raw string) string {
	if raw == "" || (raw[0] != '"' && raw[0] != '\'') {
		return raw
	}
	words, err := console.Tokenize(raw)
	if err != nil || len(words) != 1 {
		return raw
	}
	return words[0]
}

func (s *Shell) catCommand() *cli.Command {
	return &cli.Command{
		Name:    "cat",
		Summary: "Display file content",
		Group:   fileSystemGroup,
		Usage:   "cat <name>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("cat <name>")
			}
			content, err := s.session.Engine().Read(s.session.WorkingDirectory(), args[0])
			if err != nil {
				return describe(err, missingFile)
			}
			if len(content) > 0 {
				s.printf("%s\n", content)
			}
			return nil
		},
	}
}

func (s *Shell) rmCommand() *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Summary: "Remove file or directory",
		Group:   fileSystemGroup,
		Description: `Remove a file, or a directory that has no entries. A removed file's
block becomes free for later writes.`,
		Usage: "rm <name>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("rm <name>")
			}
			storage := s.session.Engine()
			cwd := s.session.WorkingDirectory()
			entry, err := storage.Resolve(cwd, args[0])
			if err != nil {
				return describe(err, missingEntry)
			}
			if err := storage.Remove(cwd, args[0]); err != nil {
				return describe(err, missingEntry)
			}
			if entry.IsDirectory() {
				s.printf("Directory removed\n")
			} else {
				s.printf("File removed\n")
			}
			return nil
		},
	}
}

func (s *Shell) statCommand() *cli.Command {
	return &cli.Command{
		Name:    "stat",
		Summary: "Show entry details",
		Group:   fileSystemGroup,
		Description: `Print an entry's absolute path, kind, stable entry ID, and for files
the block it occupies in the memory buffer.`,
		Usage: "stat <name>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("stat <name>")
			}
			stat, err := s.session.Engine().Stat(s.session.WorkingDirectory(), args[0])
			if err != nil {
				return describe(err, "File not found")
			}

			writer := tabwriter.NewWriter(s.out, 0, 0, 1, ' ', 0)
			fmt.Fprintf(writer, "Path:\t%s\n", stat.Path)
			fmt.Fprintf(writer, "Kind:\t%s\n", stat.Kind)
			fmt.Fprintf(writer, "Entry:\t%s\n", stat.ID)
			if !stat.IsDirectory() {
				fmt.Fprintf(writer, "Offset:\t%d\n", stat.Offset)
				fmt.Fprintf(writer, "Stored:\t%s\n", units.FormatExact(stat.Size))
				fmt.Fprintf(writer, "Length:\t%s\n", units.FormatExact(stat.Length))
				fmt.Fprintf(writer, "Compression:\t%s\n", stat.Compression)
			}
			fmt.Fprintf(writer, "Modified:\t%s\n", stat.Modified.UTC().Format(time.RFC3339))
			return writer.Flush()
		},
	}
}

func (s *Shell) sumCommand() *cli.Command {
	return &cli.Command{
		Name:    "sum",
		Summary: "Print the BLAKE3 digest of a file",
		Group:   fileSystemGroup,
		Description: `Print the keyed BLAKE3 digest of a file's decoded content followed by
its name. Equal content has equal digests regardless of compression.

Given an expected digest, compare instead: print "<name>: OK" on a
match and fail on a mismatch.`,
		Usage: "sum <name> [digest]",
		Examples: []cli.Example{
			{Description: "Verify a file against a recorded digest", Command: "sum notes 5f2c...e1"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) == 0 || len(args) > 2 {
				return usage("sum <name> [digest]")
			}
			var expected digest.Digest
			if len(args) == 2 {
				parsed, err := digest.Parse(args[1])
				if err != nil {
					return fail(cli.CategoryValidation, fmt.Sprintf("Invalid digest %q", args[1]), err)
				}
				expected = parsed
			}
			sum, err := s.session.Engine().Sum(s.session.WorkingDirectory(), args[0])
			if err != nil {
				return describe(err, missingFile)
			}
			if len(args) == 1 {
				s.printf("%s  %s\n", sum, args[0])
				return nil
			}
			if sum != expected {
				return cli.Validation("%s: digest mismatch (content is %s, expected %s)", args[0], sum.Short(), expected.Short())
			}
			s.printf("%s: OK\n", args[0])
			return nil
		},
	}
}
