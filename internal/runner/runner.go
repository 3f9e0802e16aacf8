// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/apex/log"

	"github.com/staranto/ttlmemo/internal/cachekey"
	"github.com/staranto/ttlmemo/internal/codec"
	"github.com/staranto/ttlmemo/internal/memo"
)

// Namespace is the identity namespace of every memoized command.
const Namespace = "exec"

// ErrNoCommand is returned for an empty argv.
var ErrNoCommand = errors.New("no command specified")

// Call is the key material of one command invocation.
type Call struct {
	Argv  []string          `yaml:"argv"`
	Dir   string            `yaml:"dir,omitempty"`
	Env   map[string]string `yaml:"env,omitempty"`
	Stdin string            `yaml:"stdin,omitempty"`
}

// Output is the cached result of a successful command.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// ExitError reports a command that ran but failed. Its output is never cached.
type ExitError struct {
	Argv   []string
	Code   int
	Stderr []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Argv[0], e.Code)
}

// Options shape a Call.
type Options struct {
	// Name overrides the identity name, which defaults to the command's base name.
	Name string
	// WithDir adds the working directory to the key.
	WithDir bool
	// Env lists environment variables whose values are added to the key.
	Env []string
	// Stdin, when non-nil, is fed to the command and its hash added to the key.
	Stdin []byte
}

// Identity returns the cache identity for argv.
func Identity(argv []string, opts Options) cachekey.Identity {
	name := opts.Name
	if name == "" && len(argv) > 0 {
		name = filepath.Base(argv[0])
	}
	return cachekey.Identity{Namespace: Namespace, Name: name}
}

// NewCall builds the Call for argv.
func NewCall(argv []string, opts Options) (Call, error) {
	if len(argv) == 0 {
		return Call{}, ErrNoCommand
	}

	call := Call{Argv: argv}

	if opts.WithDir {
		wd, err := os.Getwd()
		if err != nil {
			return Call{}, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		call.Dir = wd
	}

	if len(opts.Env) > 0 {
		names := append([]string(nil), opts.Env...)
		sort.Strings(names)
		call.Env = make(map[string]string, len(names))
		for _, n := range names {
			call.Env[n] = os.Getenv(n)
		}
	}

	if opts.Stdin != nil {
		sum := sha256.Sum256(opts.Stdin)
		call.Stdin = hex.EncodeToString(sum[:])
	}

	return call, nil
}

// Compute returns the computation running a Call, feeding it stdin.
func Compute(stdin []byte) memo.ComputeFunc[Call, Output] {
	return func(ctx context.Context, call Call) (Output, error) {
		return Execute(ctx, call, stdin)
	}
}

// Execute runs the command and captures its output.
func Execute(ctx context.Context, call Call, stdin []byte) (Output, error) {
	if len(call.Argv) == 0 {
		return Output{}, ErrNoCommand
	}

	log.Debugf("executing %v", call.Argv)

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, call.Argv[0], call.Argv[1:]...) //nolint:gosec
	c.Dir = call.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr
	if stdin != nil {
		c.Stdin = bytes.NewReader(stdin)
	}

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Output{}, &ExitError{Argv: call.Argv, Code: exitErr.ExitCode(), Stderr: stderr.Bytes()}
		}
		return Output{}, fmt.Errorf("failed to run %s: %w", call.Argv[0], err)
	}

	return Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// Replay writes captured output.
func (o Output) Replay(stdout, stderr io.Writer) error {
	if _, err := stdout.Write(o.Stdout); err != nil {
		return err
	}
	if _, err := stderr.Write(o.Stderr); err != nil {
		return err
	}
	return nil
}

// New returns a Coordinator memoizing commands for identity.
func New(id cachekey.Identity, codecName string, stdin []byte, cfg memo.Config) (*memo.Coordinator[Call, Output], error) {
	c, err := codec.ByName[Output](codecName)
	if err != nil {
		return nil, err
	}
	return memo.New(id, Compute(stdin), c, cfg)
}
