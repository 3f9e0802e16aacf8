// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/meta"
	"github.com/staranto/ttlmemo/internal/runner"
)

// ErrCacheDisabled is returned when a command needs the cache directory but
// caching is turned off or no directory can be resolved.
var ErrCacheDisabled = errors.New("cache is disabled")

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// CommandBuilder constructs a cli.Command for a subcommand using a consistent
// pattern. It wires metadata and logs the invocation before the action runs.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: cb.Flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m := GetMeta(cmd)
			if len(m.Args) > 1 {
				log.Debugf("Executing action for %v", m.Args[1:])
			}
			return cb.Action(ctx, cmd)
		},
	}
}

// CommandArgs returns the wrapped command line, dropping a leading "--"
// terminator if the parser left one behind.
func CommandArgs(cmd *cli.Command) []string {
	argv := cmd.Args().Slice()
	if len(argv) > 0 && argv[0] == "--" {
		argv = argv[1:]
	}
	return argv
}

// CallOptions reads the key-shaping flags. With --stdin the whole of the
// command's input is read up front since its hash is part of the key.
func CallOptions(cmd *cli.Command) (runner.Options, error) {
	opts := runner.Options{
		Name:    cmd.String("name"),
		WithDir: cmd.Bool("cwd"),
		Env:     cmd.StringSlice("env"),
	}

	if cmd.Bool("stdin") {
		in := cmd.Root().Reader
		if in == nil {
			return opts, errors.New("no stdin available")
		}
		b, err := io.ReadAll(in)
		if err != nil {
			return opts, fmt.Errorf("failed to read stdin: %w", err)
		}
		if b == nil {
			b = []byte{}
		}
		opts.Stdin = b
	}

	return opts, nil
}

// CacheDir returns the --dir value, creating the directory when caching is
// enabled.
func CacheDir(cmd *cli.Command) (string, error) {
	dir := cmd.String("dir")
	usable, err := cacheutil.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	if !usable {
		return "", ErrCacheDisabled
	}
	log.Debugf("cache dir: %s", dir)
	return dir, nil
}

// Writers returns the stdout and stderr of the root command.
func Writers(cmd *cli.Command) (io.Writer, io.Writer) {
	root := cmd.Root()
	return root.Writer, root.ErrWriter
}
