package dates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/postbuilder/internal/config"
)

type fakeHistory struct {
	times map[string]time.Time
	err   error
	calls int
}

func (f *fakeHistory) LastCommitTime(path string) (time.Time, bool, error) {
	f.calls++
	if f.err != nil {
		return time.Time{}, false, f.err
	}
	t, ok := f.times[path]
	return t, ok, nil
}

var (
	mtime   = time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	commit  = time.Date(2023, 2, 3, 4, 5, 6, 0, time.UTC)
	fmDate  = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	docPath = "/site/src/a.md"
)

func TestResolve_PriorityOrder(t *testing.T) {
	hist := &fakeHistory{times: map[string]time.Time{docPath: commit}}
	r := New(FrontMatter{}, NewGit(hist), ModTime{})

	seed, src := r.Resolve(Document{Path: docPath, ModTime: mtime})
	assert.Equal(t, config.DateFromGit, src)
	assert.True(t, commit.Equal(seed.Time()))

	final, src := r.Resolve(Document{Path: docPath, ModTime: mtime, FrontMatterDate: fmDate})
	assert.Equal(t, config.DateFromFrontMatter, src)
	assert.True(t, fmDate.Equal(final.Time()))
}

func TestResolve_FallsBackToModTimeInUTC(t *testing.T) {
	hist := &fakeHistory{times: map[string]time.Time{}}
	r := New(FrontMatter{}, NewGit(hist))

	d, src := r.Resolve(Document{Path: docPath, ModTime: mtime})
	assert.Equal(t, config.DateFromModTime, src)
	assert.Equal(t, mtime.UTC(), d.Time())
	assert.Equal(t, time.UTC, d.Time().Location())
}

func TestResolve_GitErrorDegrades(t *testing.T) {
	hist := &fakeHistory{err: errors.New("corrupt pack")}
	r := New(NewGit(hist), ModTime{})

	d, src := r.Resolve(Document{Path: docPath, ModTime: mtime})
	assert.Equal(t, config.DateFromModTime, src)
	assert.True(t, mtime.Equal(d.Time()))
	assert.Equal(t, 1, hist.calls)
}

func TestResolve_StrategiesAreIndependent(t *testing.T) {
	hist := &fakeHistory{times: map[string]time.Time{docPath: commit}}
	// mtime-only configuration ignores history and front matter entirely
	r := New(ModTime{})
	d, src := r.Resolve(Document{Path: docPath, ModTime: mtime, FrontMatterDate: fmDate})
	assert.Equal(t, config.DateFromModTime, src)
	assert.True(t, mtime.Equal(d.Time()))
	assert.Zero(t, hist.calls)
}

func TestFromConfig_GitDisabledOutsideRepository(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.SourcePath(), 0o750))

	r := FromConfig(cfg)
	assert.Equal(t, []config.DateStrategy{config.DateFromFrontMatter, config.DateFromModTime}, r.Strategies())
}

func TestFromConfig_GitEnabledInsideRepository(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	src := cfg.SourcePath()
	require.NoError(t, os.MkdirAll(src, 0o750))
	repo, err := gogit.PlainInit(cfg.Root, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.md"), []byte("# A"), 0o600))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("src/a.md")
	require.NoError(t, err)
	_, err = w.Commit("add a", &gogit.CommitOptions{Author: &object.Signature{Name: "T", Email: "t@example.com", When: commit}})
	require.NoError(t, err)

	r := FromConfig(cfg)
	assert.Equal(t, []config.DateStrategy{config.DateFromFrontMatter, config.DateFromGit, config.DateFromModTime}, r.Strategies())

	d, name := r.Resolve(Document{Path: filepath.Join(src, "a.md"), ModTime: mtime})
	assert.Equal(t, config.DateFromGit, name)
	assert.True(t, commit.Equal(d.Time()))
}
