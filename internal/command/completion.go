// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/ttlmemo/internal/meta"
)

const bashCompletionScript = `# bash completion for ttlmemo
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_ttlmemo()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run key ls completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local keyed="--cwd --dir -d --env -e --name -n --stdin"

    # Everything after -- belongs to the wrapped command.
    local idx=2
    while [[ $idx -lt $COMP_CWORD ]]; do
        if [[ ${COMP_WORDS[$idx]} == "--" ]]; then
            COMPREPLY=( $(compgen -c -- "$cur") )
            return 0
        fi
        ((idx++))
    done

    case "$cmd" in
        run)
            local opts="$keyed --codec --lock-timeout --ttl"
            ;;
        key)
            local opts="$keyed --output -o"
            ;;
        ls)
            local opts="--color -c --no-color --dir -d --filter -f --output -o --sort -s --titles -t --no-titles --ttl"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --codec)
            COMPREPLY=( $(compgen -W "gob json yaml cbor" -- "$cur") )
            return 0
            ;;
        --dir|-d)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
        --env|-e)
            COMPREPLY=( $(compgen -v -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts --" -- "$cur") )
    return 0
}

complete -F _ttlmemo ttlmemo
`

const zshCompletionScript = `#compdef ttlmemo

_ttlmemo() {
  local -a cmds
  cmds=(
    'run:run a command, reusing its output while it is fresh'
    'key:show the cache key of a command'
    'ls:list cache entries'
    'completion:generate shell completion script'
  )

  local -a keyed
  keyed=(
  '--cwd[include the working directory in the key]'
  '(-d --dir)'{-d,--dir}'[cache directory]:dir:_directories'
  '*'{-e,--env}'[include an environment variable in the key]:name:_parameters'
  '(-n --name)'{-n,--name}'[identity name]:name'
  '--stdin[include stdin in the key]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'ttlmemo commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    run)
      _arguments -C \
        $keyed \
        '--codec[payload codec]:codec:(gob json yaml cbor)' \
        '--lock-timeout[lock wait limit]:duration' \
        '--ttl[freshness window]:duration' \
        '*::command:_normal'
      ;;
    key)
      _arguments -C \
        $keyed \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '*::command:_normal'
      ;;
    ls)
      _arguments -C \
        '(-d --dir)'{-d,--dir}'[cache directory]:dir:_directories' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-t --titles --no-titles)'{-t,--titles}'[show titles]' \
        '--no-titles[hide titles]' \
        '--ttl[freshness window]:duration'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _ttlmemo ttlmemo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	stdout, stderr := Writers(cmd)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(stderr, "usage: ttlmemo completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "ttlmemo completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
