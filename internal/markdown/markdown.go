// Package markdown converts post bodies to HTML fragments and produces the
// stylesheet that matches the highlighted code blocks.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Engine turns a Markdown body into an HTML fragment.
type Engine interface {
	Convert(src []byte) ([]byte, error)
}

// Options controls the Markdown dialect and code highlighting.
type Options struct {
	GFM        bool
	EscapeHTML bool
	HardWraps  bool
	// HighlightStyle names the chroma style used for fenced code blocks.
	HighlightStyle string
}

// Goldmark is the Engine backed by yuin/goldmark.
type Goldmark struct {
	md goldmark.Markdown
}

// New builds a goldmark engine for opts. Code blocks are emitted with CSS
// classes so the page styling comes from Stylesheet.
func New(opts Options) *Goldmark {
	exts := []goldmark.Extender{
		highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	}
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}

	var rendererOpts []goldmark.Option
	htmlOpts := []renderer.Option{html.WithXHTML()}
	if !opts.EscapeHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	rendererOpts = append(rendererOpts,
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Goldmark{md: goldmark.New(rendererOpts...)}
}

// Convert renders src. The result is deterministic for a given input.
func (g *Goldmark) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Stylesheet returns the CSS rules for the named chroma style.
func Stylesheet(style string) ([]byte, error) {
	s, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("unknown highlight style %q", style)
	}
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, s); err != nil {
		return nil, fmt.Errorf("write %s stylesheet: %w", style, err)
	}
	return buf.Bytes(), nil
}

// HasStyle reports whether style is a known chroma style.
func HasStyle(style string) bool {
	_, ok := styles.Registry[strings.ToLower(style)]
	return ok
}
