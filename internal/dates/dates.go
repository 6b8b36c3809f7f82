// Package dates resolves the canonical publish date of a source document.
//
// A Resolver walks a configured list of strategies and returns the first
// date one of them can supply. Filesystem mtime is always the last resort,
// so resolution never fails.
package dates

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	"git.home.luguber.info/inful/postbuilder/internal/git"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/postdate"
)

// Document is what strategies may inspect. FrontMatterDate is zero until the
// document has been compiled.
type Document struct {
	Path            string
	ModTime         time.Time
	FrontMatterDate time.Time
}

// Strategy supplies a date for a document, or reports it has none.
type Strategy interface {
	Name() config.DateStrategy
	Lookup(doc Document) (time.Time, bool)
}

// CommitTimer is the slice of git history the git strategy needs.
type CommitTimer interface {
	LastCommitTime(path string) (time.Time, bool, error)
}

// Resolver applies strategies in priority order.
type Resolver struct {
	strategies []Strategy
}

// New returns a resolver trying strategies in the given order.
func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// FromConfig builds the resolver for cfg.DateStrategies. The git strategy
// is dropped with a warning when no repository contains the source dir.
func FromConfig(cfg *config.Config) *Resolver {
	var list []Strategy
	for _, name := range cfg.DateStrategies {
		switch name {
		case config.DateFromFrontMatter:
			list = append(list, FrontMatter{})
		case config.DateFromGit:
			h, err := git.Open(cfg.SourcePath())
			if err != nil {
				slog.Warn("Git date strategy disabled", logfields.Path(cfg.SourcePath()), logfields.Error(err))
				continue
			}
			list = append(list, NewGit(h))
		case config.DateFromModTime:
			list = append(list, ModTime{})
		}
	}
	return New(list...)
}

// Strategies lists the active strategy names in priority order.
func (r *Resolver) Strategies() []config.DateStrategy {
	names := make([]config.DateStrategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the first date supplied by a strategy together with the
// strategy's name. The filesystem mtime is used when none answers.
func (r *Resolver) Resolve(doc Document) (postdate.PostDate, config.DateStrategy) {
	for _, s := range r.strategies {
		if t, ok := s.Lookup(doc); ok {
			return postdate.New(t), s.Name()
		}
	}
	return postdate.New(doc.ModTime), config.DateFromModTime
}

// FrontMatter returns the date declared in the document itself.
type FrontMatter struct{}

func (FrontMatter) Name() config.DateStrategy { return config.DateFromFrontMatter }

func (FrontMatter) Lookup(doc Document) (time.Time, bool) {
	return doc.FrontMatterDate, !doc.FrontMatterDate.IsZero()
}

// ModTime returns the filesystem modification time.
type ModTime struct{}

func (ModTime) Name() config.DateStrategy { return config.DateFromModTime }

func (ModTime) Lookup(doc Document) (time.Time, bool) {
	return doc.ModTime, !doc.ModTime.IsZero()
}

// Git returns the author time of the file's last commit.
type Git struct {
	history CommitTimer
}

// NewGit wraps a commit history.
func NewGit(h CommitTimer) Git { return Git{history: h} }

func (Git) Name() config.DateStrategy { return config.DateFromGit }

func (g Git) Lookup(doc Document) (time.Time, bool) {
	t, ok, err := g.history.LastCommitTime(doc.Path)
	if err != nil {
		slog.Warn("Git history lookup failed", logfields.Path(doc.Path), logfields.Error(err))
		return time.Time{}, false
	}
	return t, ok
}
