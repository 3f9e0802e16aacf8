// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/filters"
	"github.com/staranto/ttlmemo/internal/meta"
	"github.com/staranto/ttlmemo/internal/output"
)

// LsCommandAction is the action handler for the "ls" subcommand. Freshness is
// judged against --ttl since entries do not record their own.
func LsCommandAction(ctx context.Context, cmd *cli.Command) error {
	now := time.Now()

	entries, err := cacheutil.List(cmd.String("dir"), cmd.Duration("ttl"), now)
	if err != nil {
		return err
	}

	entries, err = filters.FilterEntries(entries, cmd.String("filter"))
	if err != nil {
		return err
	}
	if err := filters.SortEntries(entries, cmd.String("sort")); err != nil {
		return err
	}

	stdout, _ := Writers(cmd)
	titles := cmd.Bool("titles")
	if !cmd.IsSet("titles") {
		titles = titles && output.IsTerminal(stdout)
	}
	return output.Entries(stdout, entries, output.EntriesOptions{
		Format: cmd.String("output"),
		Titles: titles,
		Color:  cmd.Bool("color"),
		Now:    now,
	})
}

// LsCommandBuilder constructs the cli.Command for "ls".
func LsCommandBuilder(meta meta.Meta) *cli.Command {
	cb := CommandBuilder{
		Name:      "ls",
		Usage:     "list cache entries",
		UsageText: "ttlmemo ls [options]",
		Flags: []cli.Flag{
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored text output",
				Sources: NameSpacedChain("ls", "color", meta.Config.Source),
				Value:   false,
			},
			NewDirFlag("ls", meta.Config.Source),
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "comma-separated list of filters to apply to entries",
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Usage:   "comma-separated list of keys to sort entries by, prefix '-' to reverse",
				Sources: NameSpacedChain("ls", "sort", meta.Config.Source),
			},
			NewOutputFlag("ls", meta.Config.Source),
			NewTitlesFlag("ls", meta.Config.Source),
			NewTTLFlag(),
		},
		Action: LsCommandAction,
		Meta:   meta,
	}
	return cb.Build()
}
