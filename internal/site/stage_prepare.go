package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
)

// stagePrepareOutput checks the templates and makes the output directory
// exist, removing it first when a clean build is requested.
func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	b := bs.Builder
	if err := b.renderer.Check(); err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}

	out := b.cfg.OutputPath()
	if b.cfg.Clean {
		slog.Info("Removing output directory", logfields.Path(out))
		if err := os.RemoveAll(out); err != nil {
			return newFatalStageError(StagePrepareOutput, sberrors.OutputError(out, err))
		}
	}

	fi, err := os.Stat(out)
	switch {
	case err == nil && !fi.IsDir():
		return newFatalStageError(StagePrepareOutput,
			sberrors.OutputError(out, errors.New("exists and is not a directory")))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return newFatalStageError(StagePrepareOutput, sberrors.OutputError(out, err))
	}
	if err := os.MkdirAll(out, dirMode); err != nil {
		return newFatalStageError(StagePrepareOutput, sberrors.OutputError(out, err))
	}
	return nil
}
