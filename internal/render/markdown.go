package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Glamour style names accepted in config
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// glamour.TermRenderer is not safe for concurrent Render calls, so renderers
// are pooled per Options value rather than shared.
var (
	poolsMu sync.Mutex
	pools   = map[Options]*sync.Pool{}
)

func poolFor(opts Options) *sync.Pool {
	poolsMu.Lock()
	defer poolsMu.Unlock()

	p, ok := pools[opts]
	if !ok {
		p = &sync.Pool{}
		pools[opts] = p
	}
	return p
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// Markdown renders content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	p := poolFor(opts)

	r, _ := p.Get().(*glamour.TermRenderer)
	if r == nil {
		var err error
		if r, err = newRenderer(opts); err != nil {
			return "", err
		}
	}
	defer p.Put(r)

	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// MarkdownOrPlain renders content, falling back to the raw text when
// rendering fails.
func MarkdownOrPlain(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}

// ClearCache drops all pooled renderers.
func ClearCache() {
	poolsMu.Lock()
	pools = map[Options]*sync.Pool{}
	poolsMu.Unlock()
}

// CacheSize returns the number of distinct renderer configurations.
func CacheSize() int {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	return len(pools)
}

// MarkdownStyles lists the glamour styles that can be set in config.
func MarkdownStyles() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StyleNoTTY, StyleASCII}
}
