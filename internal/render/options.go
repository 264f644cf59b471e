// Package render provides markdown rendering and color themes for the
// support widget.
package render

import (
	"os"

	"github.com/bobee/supportbot/internal/config"
)

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the word-wrap width (default: 80)
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	// EnableEmoji converts :emoji: to unicode characters
	EnableEmoji bool

	// PreserveNewLines keeps the original line breaks of a reply
	PreserveNewLines bool

	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return OptionsFromMarkdown(config.DefaultMarkdownConfig())
}

// OptionsFromMarkdown converts the markdown section of the user config.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromMarkdown(md config.MarkdownConfig) Options {
	opts := Options{
		Width:            80,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = StyleDark
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
