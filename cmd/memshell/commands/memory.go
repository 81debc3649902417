// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/memshell/cmd/memshell/cli"
	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/backing"
	"github.com/bureau-foundation/memshell/lib/codec"
	"github.com/bureau-foundation/memshell/lib/engine"
	"github.com/bureau-foundation/memshell/lib/units"
)

// parseInteger accepts decimal or 0x-prefixed hexadecimal.
func parseInteger(text string) (int64, error) {
	if rest, found := strings.CutPrefix(strings.ToLower(text), "0x"); found {
		return strconv.ParseInt(rest, 16, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

func (s *Shell) peekCommand() *cli.Command {
	return &cli.Command{
		Name:    "peek",
		Summary: "Display memory content at offset",
		Description: `Print the byte at an absolute offset of the memory buffer as an
unsigned decimal. Offsets may be decimal or 0x-prefixed hexadecimal.`,
		Usage: "peek <offset>",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usage("peek <offset>")
			}
			offset, err := parseInteger(args[0])
			if err != nil || offset < 0 {
				return cli.Validation("Invalid offset")
			}
			value, err := s.session.Engine().Peek(offset)
			if err != nil {
				return describe(err, "Invalid offset")
			}
			s.printf("Memory at offset %d: %d\n", offset, value)
			return nil
		},
	}
}

func (s *Shell) pokeCommand() *cli.Command {
	return &cli.Command{
		Name:    "poke",
		Summary: "Write byte value at offset",
		Description: `Store a byte at an absolute offset of the memory buffer. The value
is reduced modulo 256, so 300 stores 44 and -1 stores 255. poke ignores
the file system: it can overwrite file content or the metadata image.`,
		Usage: "poke <offset> <value>",
		Examples: []cli.Example{
			{Description: "Corrupt the metadata image header", Command: "poke 0 0"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 2 {
				return usage("poke <offset> <value>")
			}
			offset, err := parseInteger(args[0])
			if err != nil || offset < 0 {
				return cli.Validation("Invalid offset")
			}
			value, err := parseInteger(args[1])
			if err != nil {
				return cli.Validation("Invalid value")
			}
			stored, err := s.session.Engine().Poke(offset, value)
			if err != nil {
				return describe(err, "Invalid offset")
			}
			s.printf("Written value %d at offset %d\n", stored, offset)
			return nil
		},
	}
}

func (s *Shell) memsizeCommand() *cli.Command {
	return &cli.Command{
		Name:    "memsize",
		Summary: "Display current memory allocation",
		Usage:   "memsize",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return usage("memsize")
			}
			storage := s.session.Engine()
			s.printf("Current memory allocation: %s\n", units.FormatExact(storage.Capacity()))
			if limit := storage.Limit(); limit > 0 {
				s.printf("Allocation limit: %s\n", units.FormatExact(limit))
			}
			return nil
		},
	}
}

func (s *Shell) resizeCommand() *cli.Command {
	return &cli.Command{
		Name:    "resize",
		Summary: "Resize memory allocation (e.g., '1GB', '512MB')",
		Description: `Reallocate the memory buffer. The first min(old, new) bytes are
preserved and any added space reads as zero. Shrinking below the end
of a file's content is refused. Sizes are 1024-based: bare bytes, K/KB,
M/MB, G/GB, T/TB, case-insensitive, fractions allowed.`,
		Usage: "resize <size>",
		Examples: []cli.Example{
			{Description: "Grow to one gibibyte", Command: "resize 1GB"},
			{Description: "Shrink to 512 MiB", Command: "resize 512m"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				return usage("resize <size>")
			}
			text := strings.Join(args, " ")
			size, err := units.ParseSize(text)
			if err != nil {
				return fail(cli.CategoryValidation, "Invalid size "+strconv.Quote(text), err)
			}

			storage := s.session.Engine()
			s.printf("Attempting to resize memory to %s...\n", units.Format(size))
			if err := storage.Resize(size); err != nil {
				reason := "out of memory"
				category := cli.CategoryInternal
				switch {
				case errors.Is(err, engine.ErrWouldTruncate):
					reason, category = "files occupy space beyond the requested size", cli.CategoryConflict
				case !errors.Is(err, backing.ErrOutOfMemory):
					reason = err.Error()
				}
				return fail(category, "Memory resize failed: "+reason+
					". Current size remains at "+units.Format(storage.Capacity()), err)
			}
			s.printf("Memory successfully resized to %s\n", units.Format(storage.Capacity()))
			return nil
		},
	}
}

type dfParams struct {
	Gaps bool `flag:"gaps,g" desc:"list every free block of the data region"`
}

func (s *Shell) dfCommand() *cli.Command {
	var params dfParams
	return &cli.Command{
		Name:    "df",
		Summary: "Show free space",
		Group:   fileSystemGroup,
		Description: `Report total, used, and free space. Used space is the stored size
of every file. Free space is an accounting figure: writes need one
contiguous free block, so the largest block is shown too.`,
		Usage: "df [--gaps]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("df", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return usage("df [--gaps]")
			}
			storage := s.session.Engine()
			report := storage.Usage()
			gaps := storage.Gaps()

			s.printf("Total space: %s\n", units.Format(report.Capacity))
			s.printf("Used space:  %s\n", units.Format(report.Used))
			s.printf("Free space:  %s\n", units.Format(report.Free))
			if len(gaps) == 0 {
				s.printf("Largest free block: none\n")
			} else {
				largest := alloc.Largest(gaps)
				s.printf("Largest free block: %s at offset %d\n", units.Format(largest.Length), largest.Offset)
			}

			if params.Gaps && len(gaps) > 0 {
				s.printf("\nFree blocks:\n")
				writer := tabwriter.NewWriter(s.out, 2, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintf(writer, "OFFSET\tEND\tLENGTH\t\n")
				for _, gap := range gaps {
					fmt.Fprintf(writer, "%d\t%d\t%s\t\n", gap.Offset, gap.End(), units.Format(gap.Length))
				}
				writer.Flush()
			}
			return nil
		},
	}
}

func (s *Shell) metaCommand() *cli.Command {
	return &cli.Command{
		Name:    "meta",
		Summary: "Show the metadata image in the reserved region",
		Description: `Decode the file table image the engine keeps at the start of the
memory buffer and print it in CBOR diagnostic notation. The image is
rewritten after every change; poking the reserved region corrupts it
until the next change.`,
		Usage: "meta",
		Run: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return usage("meta")
			}
			storage := s.session.Engine()
			payload, err := storage.MetadataBytes()
			if err != nil {
				return fail(cli.CategoryNotFound, "No metadata image in the reserved region", err)
			}
			image, err := storage.Metadata()
			if err != nil {
				return fail(cli.CategoryInternal, "Metadata image is corrupt", err)
			}
			diagnostic, err := codec.Diagnose(payload)
			if err != nil {
				return fail(cli.CategoryInternal, "Metadata image is corrupt", err)
			}
			s.printf("Metadata image: %d bytes, %d entries, version %d\n",
				len(payload), len(image.Entries), image.Version)
			s.printf("%s\n", diagnostic)
			return nil
		},
	}
}
