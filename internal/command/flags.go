// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/config"
)

// DefaultTTL is how long a memoized result stays fresh unless overridden.
const DefaultTTL = 60 * time.Second

// NewDirFlag constructs the --dir flag. The environment wins over the config
// file, which may set it as ns.cache.dir or cache.dir.
func NewDirFlag(ns string, path string) *cli.StringFlag {
	base, _ := cacheutil.Dir()
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "cache directory",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TTLMEMO_CACHE_DIR"),
			yaml.YAML(ns+".cache.dir", altsrc.StringSourcer(path)),
			yaml.YAML("cache.dir", altsrc.StringSourcer(path)),
		),
		Value: base,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

// NewTTLFlag constructs the --ttl flag. Its default comes from the config file
// rather than a flag source so bare numbers there can mean seconds.
func NewTTLFlag() *cli.DurationFlag {
	return &cli.DurationFlag{
		Name:    "ttl",
		Usage:   "how long a result stays fresh",
		Sources: cli.NewValueSourceChain(cli.EnvVar("TTLMEMO_TTL")),
		Value:   configDuration("ttl", DefaultTTL),
		Validator: func(value time.Duration) error {
			return FlagValidators(value, PositiveDurationValidator)
		},
	}
}

// NewKeyFlags constructs the flags that shape the cache key of a command.
func NewKeyFlags(ns string, path string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "cwd",
			Usage: "include the working directory in the key",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".cwd", altsrc.StringSourcer(path)),
			),
			Value: false,
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "include the value of environment variable `NAME` in the key",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "identity name, defaults to the command's base name",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "stdin",
			Usage: "feed stdin to the command and include its hash in the key",
			Value: false,
		},
		NewDirFlag(ns, path),
	}
}

// NewRunFlags constructs the flags that control how a result is stored.
func NewRunFlags(ns string, path string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "codec",
			Usage:   "payload codec (gob, json, yaml, cbor)",
			Sources: NameSpacedChain(ns, "codec", path, cli.EnvVar("TTLMEMO_CODEC")),
			Value:   "gob",
			Validator: func(value string) error {
				return FlagValidators(value, CodecValidator)
			},
		},
		&cli.DurationFlag{
			Name:  "lock-timeout",
			Usage: "give up waiting for an entry lock after this long, 0 waits forever",
			Value: configDuration("lock_timeout", 0),
			Validator: func(value time.Duration) error {
				return FlagValidators(value, NonNegativeDurationValidator)
			},
		},
		NewTTLFlag(),
	}
}

// NewOutputFlag constructs the --output flag.
func NewOutputFlag(ns string, path string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format",
		Sources: NameSpacedChain(ns, "output", path, cli.EnvVar("TTLMEMO_OUTPUT")),
		Value:   "text",
		Validator: func(value string) error {
			return FlagValidators(value, OutputValidator)
		},
	}
}

// NewTitlesFlag constructs --titles. Left unset, titles are shown only when
// stdout is a terminal.
func NewTitlesFlag(ns string, path string) *cli.BoolWithInverseFlag {
	return &cli.BoolWithInverseFlag{
		Name:    "titles",
		Aliases: []string{"t"},
		Usage:   "show titles with text output",
		Sources: NameSpacedChain(ns, "titles", path),
		Value:   true,
	}
}

// configDuration reads a duration from the loaded config, honouring its
// namespace, and falls back to def when the key is missing or malformed.
func configDuration(key string, def time.Duration) time.Duration {
	d, err := config.GetDuration(key, def)
	if err != nil {
		log.Warnf("ignoring config %s: %v", key, err)
		return def
	}
	return d
}

// NameSpacedChain builds a value source chain of the given sources followed by
// the namespaced and global keys in the config file at path.
func NameSpacedChain(ns string, key string, path string, sources ...cli.ValueSource) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain(sources...)
	chain.Chain = append(chain.Chain,
		yaml.YAML(ns+"."+key, altsrc.StringSourcer(path)),
		yaml.YAML(key, altsrc.StringSourcer(path)),
	)
	return chain
}
