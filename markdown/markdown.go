// Package markdown turns blog content documents into HTML.
//
// Rendering backends are interchangeable behind the Renderer interface.
// Basic is a small line-oriented renderer with no parser dependency;
// Goldmark wraps github.com/yuin/goldmark with GitHub-flavoured extensions.
// Either can add chroma syntax highlighting to fenced code blocks.
package markdown

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Renderer names accepted by New.
const (
	NameBasic    = "basic"
	NameGoldmark = "goldmark"
)

// DefaultStyle is the chroma style used when Options.Style is empty.
const DefaultStyle = "monokai"

// Renderer converts markdown source to HTML. Implementations must be pure
// and safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, src string) (string, error)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, src string) (string, error)

// Render calls f(ctx, src).
func (f RendererFunc) Render(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}

// Options tune a renderer built by New.
type Options struct {
	Highlight bool   // highlight fenced code blocks with chroma
	Style     string // chroma style name (default "monokai")
	AllowHTML bool   // pass raw HTML in the source through (goldmark only)
}

func (o Options) style() string {
	if o.Style == "" {
		return DefaultStyle
	}
	return o.Style
}

// New returns the renderer registered under name.
func New(name string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameBasic:
		return NewBasic(opts), nil
	case NameGoldmark, "":
		return NewGoldmark(opts), nil
	default:
		return nil, fmt.Errorf("markdown: unknown renderer %q", name)
	}
}

// Component returns a templ.Component that writes the HTML rendering of src.
func Component(r Renderer, src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render(ctx, src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}
