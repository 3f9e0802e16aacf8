// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/memo"
	"github.com/staranto/ttlmemo/internal/meta"
	"github.com/staranto/ttlmemo/internal/runner"
)

// RunCommandAction is the action handler for the "run" subcommand. It replays
// a fresh cached result or runs the command and stores what it printed. A
// command that fails is never cached and its exit code becomes ours.
func RunCommandAction(ctx context.Context, cmd *cli.Command) error {
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

	stdout, stderr := Writers(cmd)

	var out runner.Output
	var c *memo.Coordinator[runner.Call, runner.Output]
	if cacheutil.Enabled() {
		c, err = newCoordinator(cmd, argv, opts)
		if err != nil && !errors.Is(err, ErrCacheDisabled) {
			return err
		}
	}
	if c == nil {
		log.Debug("cache disabled or no cache dir, running directly")
		out, err = runner.Execute(ctx, call, opts.Stdin)
	} else {
		out, err = c.GetOrCompute(ctx, call)
	}

	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			_, _ = stderr.Write(exitErr.Stderr)
			return cli.Exit("", exitErr.Code)
		}
		return err
	}

	return out.Replay(stdout, stderr)
}

func newCoordinator(cmd *cli.Command, argv []string, opts runner.Options) (*memo.Coordinator[runner.Call, runner.Output], error) {
	dir, err := CacheDir(cmd)
	if err != nil {
		return nil, err
	}

	cfg := memo.Config{
		Dir:         dir,
		TTL:         cmd.Duration("ttl"),
		LockTimeout: cmd.Duration("lock-timeout"),
	}

	return runner.New(runner.Identity(argv, opts), cmd.String("codec"), opts.Stdin, cfg)
}

// RunCommandBuilder constructs the cli.Command for "run".
func RunCommandBuilder(meta meta.Meta) *cli.Command {
	cb := CommandBuilder{
		Name:      "run",
		Usage:     "run a command, reusing its output while it is fresh",
		UsageText: "ttlmemo run [options] -- COMMAND [ARGS...]",
		Flags:     append(NewKeyFlags("run", meta.Config.Source), NewRunFlags("run", meta.Config.Source)...),
		Action:    RunCommandAction,
		Meta:      meta,
	}
	return cb.Build()
}
