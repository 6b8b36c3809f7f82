// Package render fills Mustache templates with post and index data.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cbroglie/mustache"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/post"
)

// Options selects the template files and how strictly they are applied.
type Options struct {
	PostTemplate  string
	IndexTemplate string
	// Lenient renders missing variables as empty strings instead of failing.
	// Each Renderer keeps its own setting.
	Lenient bool
}

// missingVarsMu guards mustache.AllowMissingVariables, which the library
// keeps in a package variable and reads during rendering.
var missingVarsMu sync.Mutex

// Renderer loads templates from a directory on first use and caches them.
// Safe for concurrent use.
type Renderer struct {
	dir      string
	opts     Options
	partials *mustache.FileProvider

	mu    sync.Mutex
	cache map[string]*mustache.Template
}

// New returns a renderer for templates under dir. Partials such as
// {{> header}} resolve to dir/header.html or dir/header.mustache.
func New(dir string, opts Options) *Renderer {
	return &Renderer{
		dir:  dir,
		opts: opts,
		partials: &mustache.FileProvider{
			Paths:      []string{dir},
			Extensions: []string{".html", ".mustache"},
		},
		cache: make(map[string]*mustache.Template),
	}
}

// Check loads every configured template so missing or malformed files are
// reported before any output is written.
func (r *Renderer) Check() error {
	for _, name := range []string{r.opts.PostTemplate, r.opts.IndexTemplate} {
		if _, err := r.template(name); err != nil {
			return err
		}
	}
	return nil
}

// Render executes the named template with ctx.
func (r *Renderer) Render(name string, ctx map[string]any) ([]byte, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.execute(tmpl, &buf, ctx); err != nil {
		return nil, sberrors.TemplateError(name, err)
	}
	return buf.Bytes(), nil
}

// execute renders with this renderer's missing-variable setting applied.
// Executions are serialized across renderers while the setting is held.
func (r *Renderer) execute(tmpl *mustache.Template, w io.Writer, ctx map[string]any) error {
	missingVarsMu.Lock()
	defer missingVarsMu.Unlock()
	mustache.AllowMissingVariables = r.opts.Lenient
	return tmpl.FRender(w, ctx)
}

// RenderPost renders one post page.
func (r *Renderer) RenderPost(v post.PostView) ([]byte, error) {
	return r.Render(r.opts.PostTemplate, v.Map())
}

// RenderIndex renders the index page.
func (r *Renderer) RenderIndex(v post.IndexView) ([]byte, error) {
	return r.Render(r.opts.IndexTemplate, v.Map())
}

func (r *Renderer) template(name string) (*mustache.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[name]; ok {
		return t, nil
	}
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, sberrors.TemplateError(name, err)
	}
	t, err := mustache.ParseFilePartials(path, r.partials)
	if err != nil {
		return nil, sberrors.TemplateError(name, fmt.Errorf("parse %s: %w", path, err))
	}
	r.cache[name] = t
	return t, nil
}
