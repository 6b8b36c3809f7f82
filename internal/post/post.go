// Package post models blog posts: reading sources, compiling them, and
// keeping them in publish order.
package post

import (
	"log/slog"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	"git.home.luguber.info/inful/postbuilder/internal/dates"
	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/postdate"
	"git.home.luguber.info/inful/postbuilder/internal/titlecase"
)

// Post is a compiled blog entry.
type Post struct {
	Title    string
	Slug     string
	URL      string
	Date     postdate.PostDate
	HTMLBody []byte
	Source   string
	Seq      int
	// Fingerprint identifies the source content, metadata included.
	Fingerprint string
	// DateSource names the strategy that supplied Date.
	DateSource config.DateStrategy
}

// Compiled reports whether the post has a body and a date.
func (p *Post) Compiled() bool {
	return p != nil && p.HTMLBody != nil && !p.Date.IsZero()
}

// Assemble compiles doc and resolves its title, slug and date.
//
// The date is resolved once before compiling, so a failure to compile still
// leaves a usable seed in the log, and again afterwards when a declared date
// may be known.
func Assemble(doc SourceDocument, c *Compiler, r *dates.Resolver) (*Post, error) {
	dateDoc := dates.Document{Path: doc.Path, ModTime: doc.ModTime}
	seed, _ := r.Resolve(dateDoc)

	res, err := c.Compile(doc.RawText)
	if err != nil {
		slog.Debug("Compile failed", logfields.Path(doc.Path), slog.String("seed_date", seed.ISO()))
		return nil, sberrors.CompileError(doc.Path, err)
	}
	if res.Meta.InvalidDate != "" {
		slog.Warn("Ignoring unparseable date", logfields.Path(doc.Path), slog.String("date", res.Meta.InvalidDate))
	}

	dateDoc.FrontMatterDate = res.Date
	date, source := r.Resolve(dateDoc)

	title := titlecase.ToTitle(doc.Name)
	if res.Title != "" {
		title = res.Title
	}
	slug := doc.Name

	html := res.HTML
	if html == nil {
		html = []byte{}
	}
	return &Post{
		Title:       title,
		Slug:        slug,
		URL:         titlecase.PageURL(slug),
		Date:        date,
		HTMLBody:    html,
		Source:      doc.Path,
		Seq:         doc.Seq,
		Fingerprint: mdfp.CalculateFingerprintFromParts(res.Meta.Raw, string(res.Body)),
		DateSource:  source,
	}, nil
}
