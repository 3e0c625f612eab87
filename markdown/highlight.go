package markdown

import (
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter renders code as inline-styled HTML using chroma.
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter returns a Highlighter for the named chroma style. Unknown
// names fall back to chroma's default style.
func NewHighlighter(style string) *Highlighter {
	if style == "" {
		style = DefaultStyle
	}
	return &Highlighter{style: styles.Get(style)}
}

// Highlight writes code, tokenised for lang, to w. Unknown languages are
// emitted as plain text inside the same <pre> wrapper.
func (h *Highlighter) Highlight(w io.Writer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	// Formatters carry per-call state, build one per block.
	f := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	return f.Format(w, h.style, it)
}
