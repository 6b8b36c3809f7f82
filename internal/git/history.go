package git

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoRepository is returned by Open when dir is not inside a git working tree.
var ErrNoRepository = errors.New("no git repository found")

// History answers last-commit lookups for files inside one working tree.
// It is safe for concurrent use; lookups are serialized and memoized.
type History struct {
	mu    sync.Mutex
	repo  *git.Repository
	root  string
	head  plumbing.Hash
	empty bool
	cache map[string]lookup
}

type lookup struct {
	when time.Time
	ok   bool
}

// Open locates the repository containing dir, searching parent directories
// like the git command line does.
func Open(dir string) (*History, error) {
	abs, err := resolve(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w at %s", ErrNoRepository, dir)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	root, err := resolve(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}

	h := &History{repo: repo, root: root, cache: make(map[string]lookup)}
	ref, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Freshly initialised repository without commits.
		h.empty = true
	case err != nil:
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	default:
		h.head = ref.Hash()
	}
	slog.Debug("Opened git history", logfields.Path(root), slog.Bool("empty", h.empty))
	return h, nil
}

// Root returns the working tree root.
func (h *History) Root() string { return h.root }

// LastCommitTime returns the author time of the newest commit touching path.
// ok is false when the file is outside the working tree, untracked, or the
// repository has no commits.
func (h *History) LastCommitTime(path string) (when time.Time, ok bool, err error) {
	rel, inside, err := h.relative(path)
	if err != nil || !inside {
		return time.Time{}, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if l, hit := h.cache[rel]; hit {
		return l.when, l.ok, nil
	}
	if h.empty {
		return time.Time{}, false, nil
	}

	iter, err := h.repo.Log(&git.LogOptions{From: h.head, FileName: &rel})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("log %s: %w", rel, err)
	}
	defer iter.Close()

	c, err := iter.Next()
	switch {
	case errors.Is(err, io.EOF):
		h.cache[rel] = lookup{}
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("log %s: %w", rel, err)
	}
	l := lookup{when: c.Author.When, ok: true}
	h.cache[rel] = l
	return l.when, true, nil
}

// relative maps path to a slash-separated path relative to the working tree.
func (h *History) relative(path string) (string, bool, error) {
	// Only the parent directory is resolved: a symlinked document is tracked
	// under its own name, not its target's.
	dir, err := resolve(filepath.Dir(path))
	if err != nil {
		return "", false, err
	}
	abs := filepath.Join(dir, filepath.Base(path))
	rel, err := filepath.Rel(h.root, abs)
	if err != nil {
		return "", false, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false, nil
	}
	return filepath.ToSlash(rel), true, nil
}

// resolve returns an absolute path with symlinks evaluated so that paths under
// aliased temp directories compare equal to the worktree root.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path for %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
