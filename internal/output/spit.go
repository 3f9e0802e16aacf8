// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/ttlmemo/internal/cacheutil"
	"github.com/staranto/ttlmemo/internal/config"
)

// Formats are the values accepted by --output.
var Formats = []string{"text", "json", "yaml"}

// KeyInfo is what the key command reports for one invocation.
type KeyInfo struct {
	Identity string `json:"identity" yaml:"identity"`
	Clear    string `json:"key" yaml:"key"`
	Encoded  string `json:"encoded" yaml:"encoded"`
	Path     string `json:"path" yaml:"path"`
	Exists   bool   `json:"exists" yaml:"exists"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Modified string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EntriesOptions control how a cache listing is rendered. Titles and Color
// only apply to text output.
type EntriesOptions struct {
	Format string
	Titles bool
	Color  bool
	Now    time.Time
}

// Entries writes a cache listing.
func Entries(w io.Writer, entries []cacheutil.Entry, opts EntriesOptions) error {
	switch opts.Format {
	case "json":
		return spitJSON(w, nonNil(entries))
	case "yaml":
		return spitYAML(w, nonNil(entries))
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}

	if len(entries) == 0 {
		return nil
	}

	var rows [][]string
	for _, e := range entries {
		fresh := "stale"
		if e.Fresh {
			fresh = "fresh"
		}
		rows = append(rows, []string{
			e.Name,
			humanize.Bytes(uint64(e.Size)), //nolint:gosec
			humanize.RelTime(e.ModTime, opts.Now, "ago", "from now"),
			fresh,
		})
	}

	var (
		headerStyle = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle   = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		freshStyle  = cellStyle
		staleStyle  = cellStyle
	)

	if opts.Color {
		headerColor, freshColor, staleColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		freshStyle = freshStyle.Foreground(lipgloss.Color(freshColor))
		staleStyle = staleStyle.Foreground(lipgloss.Color(staleColor))
	}

	pad, _ := config.GetInt("padding", 0)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row < len(entries) && entries[row].Fresh:
				style = freshStyle
			default:
				style = staleStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Rows(rows...)
	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers("NAME", "SIZE", "MODIFIED", "STATE").BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

// Key writes a KeyInfo in the given format.
func Key(w io.Writer, info KeyInfo, format string) error {
	switch format {
	case "json":
		return spitJSON(w, info)
	case "yaml":
		return spitYAML(w, info)
	case "text", "":
		_, err := fmt.Fprintf(w, "identity: %s\nkey:      %s\nencoded:  %s\npath:     %s\nexists:   %t\n",
			info.Identity, info.Clear, info.Encoded, info.Path, info.Exists)
		if err == nil && info.Exists {
			_, err = fmt.Fprintf(w, "size:     %s\nmodified: %s\n", humanize.Bytes(uint64(info.Size)), info.Modified) //nolint:gosec
		}
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, fresh string, stale string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	fresh, _ = config.GetString(fmt.Sprintf("%s.fresh", key), "#ffffff")
	stale, _ = config.GetString(fmt.Sprintf("%s.stale", key), "#00c8f0")
	return
}

func spitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func spitYAML(w io.Writer, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func nonNil(entries []cacheutil.Entry) []cacheutil.Entry {
	if entries == nil {
		return []cacheutil.Entry{}
	}
	return entries
}
