package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

// stageCopyAssets places the style directory into the output and writes the
// highlighting stylesheet next to it. A missing style directory is only a
// warning.
func stageCopyAssets(_ context.Context, bs *BuildState) error {
	cfg := bs.Builder.cfg
	src := cfg.StylePath()
	dst := cfg.StyleOutputPath()

	var warning error
	fi, err := os.Stat(src)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		warning = fmt.Errorf("style directory %s not found", src)
		if err := ensureRealDir(dst); err != nil {
			return newFatalStageError(StageCopyAssets, sberrors.AssetCopyError(dst, err))
		}
	case err != nil:
		return newFatalStageError(StageCopyAssets, sberrors.AssetCopyError(src, err))
	case !fi.IsDir():
		return newFatalStageError(StageCopyAssets, sberrors.AssetCopyError(src, errors.New("not a directory")))
	default:
		n, err := placeAssets(src, dst, cfg.Assets)
		if err != nil {
			return newFatalStageError(StageCopyAssets, err)
		}
		bs.Report.AssetsPlaced = n
		slog.Debug("Placed style assets", logfields.Path(dst), logfields.Count(n), slog.String("mode", string(cfg.Assets)))
	}

	css, err := markdown.Stylesheet(cfg.HighlightStyle)
	if err != nil {
		return newFatalStageError(StageCopyAssets, sberrors.AssetCopyError(dst, err))
	}
	sheet := filepath.Join(dst, cfg.Stylesheet)
	if _, err := writeIfChanged(sheet, css); err != nil {
		return newFatalStageError(StageCopyAssets, sberrors.AssetCopyError(sheet, err))
	}

	if warning != nil {
		return newWarnStageError(StageCopyAssets, warning)
	}
	return nil
}
