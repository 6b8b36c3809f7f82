package site

import (
	"context"
	"log/slog"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/post"
)

// stageScanSources lists and reads the Markdown sources. Seq follows name
// order so ties in publish date resolve the same way on every build.
func stageScanSources(ctx context.Context, bs *BuildState) error {
	src := bs.Builder.cfg.SourcePath()
	paths, err := post.Scan(src)
	if err != nil {
		return newFatalStageError(StageScanSources, sberrors.SourceReadError(src, err))
	}
	bs.SourcePaths = paths

	docs := make([]post.SourceDocument, 0, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageScanSources, err)
		}
		doc, err := post.ReadSource(p, i)
		if err != nil {
			return newFatalStageError(StageScanSources, sberrors.SourceReadError(p, err))
		}
		docs = append(docs, doc)
	}
	bs.Sources = docs
	bs.Report.Sources = len(docs)

	if len(docs) == 0 {
		slog.Info("No posts found", logfields.Path(src))
	} else {
		slog.Debug("Scanned sources", logfields.Path(src), logfields.Count(len(docs)))
	}
	return nil
}
