// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/cachekey"
	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/meta"
	"github.com/staranto/ttlmemo/internal/output"
	"github.com/staranto/ttlmemo/internal/runner"
)

// KeyCommandAction is the action handler for the "key" subcommand. It reports
// where "run" would store the command's output without running anything.
func KeyCommandAction(ctx context.Context, cmd *cli.Command) error {
	argv := CommandArgs(cmd)
	if len(argv) == 0 {
		return runner.ErrNoCommand
	}

	opts, err := CallOptions(cmd)
	if err != nil {
		return err
	}

	call, err := runner.NewCall(argv, opts)
	if err != nil {
		return err
	}

	key, err := cachekey.Derive(runner.Identity(argv, opts), call)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	path, _ := cacheutil.EntryPath(dir, key.Encoded)
	info := output.KeyInfo{
		Identity: key.Identity.String(),
		Clear:    key.Clear,
		Encoded:  key.Encoded,
		Path:     path,
	}
	if e, ok := cacheutil.Stat(dir, key.Encoded); ok {
		info.Exists = true
		info.Size = e.Size
		info.Modified = e.ModTime.Format(time.RFC3339)
	}

	stdout, _ := Writers(cmd)
	return output.Key(stdout, info, cmd.String("output"))
}

// KeyCommandBuilder constructs the cli.Command for "key".
func KeyCommandBuilder(meta meta.Meta) *cli.Command {
	cb := CommandBuilder{
		Name:      "key",
		Usage:     "show the cache key of a command",
		UsageText: "ttlmemo key [options] -- COMMAND [ARGS...]",
		Flags:     append(NewKeyFlags("key", meta.Config.Source), NewOutputFlag("key", meta.Config.Source)),
		Action:    KeyCommandAction,
		Meta:      meta,
	}
	return cb.Build()
}
