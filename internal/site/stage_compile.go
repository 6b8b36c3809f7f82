package site

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/post"
)

// indexPage is the output file name of the post listing.
const indexPage = "index.html"

// stageCompilePosts compiles the sources on a worker pool and inserts each
// post into the ordered collection. The first failing source in name order
// aborts the stage.
func stageCompilePosts(ctx context.Context, bs *BuildState) error {
	b := bs.Builder
	if len(bs.Sources) == 0 {
		return nil
	}

	tasks := make(chan post.SourceDocument)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		errSeq   int
	)
	fail := func(seq int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil || seq < errSeq {
			firstErr, errSeq = err, seq
		}
	}

	worker := func() {
		defer wg.Done()
		for doc := range tasks {
			p, err := post.Assemble(doc, b.compiler, b.resolver)
			if err == nil {
				err = bs.Posts.Insert(p)
			}
			if err != nil {
				fail(doc.Seq, err)
				continue
			}
			slog.Debug("Compiled post",
				logfields.Path(doc.Path),
				logfields.Post(p.Title),
				logfields.Strategy(string(p.DateSource)))
		}
	}

	concurrency := b.workerCount(len(bs.Sources))
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
feed:
	for _, doc := range bs.Sources {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- doc:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return newCanceledStageError(StageCompilePosts, err)
	}
	if firstErr != nil {
		return newFatalStageError(StageCompilePosts, firstErr)
	}

	posts := bs.Posts.Posts()
	if err := checkCollisions(b.cfg.OutputPath(), posts); err != nil {
		return newFatalStageError(StageCompilePosts, err)
	}
	warnDuplicateTitles(posts)

	for _, p := range posts {
		bs.Report.Posts = append(bs.Report.Posts, PostEntry{
			Slug:        p.Slug,
			Title:       p.Title,
			Date:        p.Date.ISO(),
			DateSource:  string(p.DateSource),
			Source:      p.Source,
			Fingerprint: p.Fingerprint,
		})
	}
	b.recorder.AddPostsCompiled(len(posts))
	return nil
}

// checkCollisions rejects a post whose page would overwrite the index.
func checkCollisions(out string, posts []*post.Post) error {
	for _, p := range posts {
		if p.URL == indexPage {
			return sberrors.OutputError(filepath.Join(out, p.URL),
				errors.New("post "+p.Source+" collides with the index page"))
		}
	}
	return nil
}

func warnDuplicateTitles(posts []*post.Post) {
	seen := make(map[string]string, len(posts))
	for _, p := range posts {
		if prev, ok := seen[p.Title]; ok {
			slog.Warn("Duplicate post title", logfields.Post(p.Title), logfields.Path(p.Source), slog.String("other", prev))
			continue
		}
		seen[p.Title] = p.Source
	}
}
