package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/post"
)

// stageRenderPages renders every post page in parallel, then the index once
// all pages are done.
func stageRenderPages(ctx context.Context, bs *BuildState) error {
	b := bs.Builder
	out := b.cfg.OutputPath()
	posts := bs.Posts.Posts()

	tasks := make(chan *post.Post)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		errSeq   int
	)
	worker := func() {
		defer wg.Done()
		for p := range tasks {
			err := bs.writePage(filepath.Join(out, p.URL), func() ([]byte, error) {
				return b.renderer.RenderPost(p.View())
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil || p.Seq < errSeq {
					firstErr, errSeq = err, p.Seq
				}
				mu.Unlock()
			}
		}
	}

	if len(posts) > 0 {
		concurrency := b.workerCount(len(posts))
		wg.Add(concurrency)
		for range concurrency {
			go worker()
		}
	feed:
		for _, p := range posts {
			select {
			case <-ctx.Done():
				break feed
			case tasks <- p:
			}
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return newCanceledStageError(StageRenderPages, err)
	}
	if firstErr != nil {
		return newFatalStageError(StageRenderPages, firstErr)
	}

	index := post.NewIndexView(posts)
	if err := bs.writePage(filepath.Join(out, indexPage), func() ([]byte, error) {
		return b.renderer.RenderIndex(index)
	}); err != nil {
		return newFatalStageError(StageRenderPages, err)
	}
	return nil
}

// writePage renders one page and writes it when its content changed.
func (bs *BuildState) writePage(path string, renderFn func() ([]byte, error)) error {
	data, err := renderFn()
	if err != nil {
		return err
	}
	written, err := writeIfChanged(path, data)
	if err != nil {
		return sberrors.OutputError(path, err)
	}

	bs.mu.Lock()
	if written {
		bs.Report.PagesWritten++
	} else {
		bs.Report.PagesUnchanged++
	}
	bs.mu.Unlock()

	result := metrics.WriteUnchanged
	if written {
		result = metrics.WriteWritten
	}
	bs.Builder.recorder.IncPageWrite(result)
	slog.Debug("Page rendered", logfields.Path(path), slog.Bool("written", written))
	return nil
}
