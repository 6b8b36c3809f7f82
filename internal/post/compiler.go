package post

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"git.home.luguber.info/inful/postbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

// CompileResult is the outcome of compiling one document.
type CompileResult struct {
	HTML []byte
	// Title is the metadata title, empty when the document declares none.
	Title string
	// Date is the metadata date, zero when absent or unparseable.
	Date time.Time
	Meta frontmatter.Meta
	// Body is the Markdown that was converted, metadata removed.
	Body []byte
}

// Compiler turns raw Markdown into an HTML fragment plus metadata. It never
// touches the filesystem and is safe for concurrent use.
type Compiler struct {
	engine markdown.Engine
	policy *bluemonday.Policy
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithSanitizer filters rendered HTML through a user-generated-content
// policy. Highlighting classes are kept.
func WithSanitizer() CompilerOption {
	return func(c *Compiler) {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		c.policy = p
	}
}

// NewCompiler returns a compiler that converts bodies with engine.
func NewCompiler(engine markdown.Engine, opts ...CompilerOption) *Compiler {
	c := &Compiler{engine: engine}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile extracts metadata and converts the remaining body.
func (c *Compiler) Compile(raw []byte) (CompileResult, error) {
	meta, body, err := frontmatter.Extract(raw)
	if err != nil {
		return CompileResult{}, err
	}
	html, err := c.engine.Convert(body)
	if err != nil {
		return CompileResult{}, err
	}
	if c.policy != nil {
		html = c.policy.SanitizeBytes(html)
	}
	return CompileResult{
		HTML:  html,
		Title: meta.Title,
		Date:  meta.Date,
		Meta:  meta,
		Body:  body,
	}, nil
}
