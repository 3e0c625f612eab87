package markdown

import (
	"bytes"
	"context"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Goldmark renders CommonMark plus the GFM extensions (tables,
// strikethrough, autolinks, task lists).
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds a goldmark-backed renderer.
func NewGoldmark(opts Options) *Goldmark {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.style()),
			highlighting.WithFormatOptions(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
		))
	}
	var rendererOpts []goldmark.Option
	if opts.AllowHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}
	return &Goldmark{
		md: goldmark.New(append(rendererOpts, goldmark.WithExtensions(exts...))...),
	}
}

// Render converts src to HTML.
func (g *Goldmark) Render(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
