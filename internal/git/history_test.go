package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string, when time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	_, err = w.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestLastCommitTime_TrackedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)
	commitFile(t, repo, dir, "src/a.md", "# A", first)
	commitFile(t, repo, dir, "src/b.md", "# B", first.Add(time.Hour))
	commitFile(t, repo, dir, "src/a.md", "# A2", second)

	h, err := Open(filepath.Join(dir, "src"))
	require.NoError(t, err)

	when, ok, err := h.LastCommitTime(filepath.Join(dir, "src", "a.md"))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, second.Equal(when), "got %s", when)

	when, ok, err = h.LastCommitTime(filepath.Join(dir, "src", "b.md"))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, first.Add(time.Hour).Equal(when), "got %s", when)

	// memoized lookups return the same answer
	again, ok, err := h.LastCommitTime(filepath.Join(dir, "src", "b.md"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, when, again)
}

func TestLastCommitTime_UntrackedAndOutside(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "tracked.md", "x", time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.md"), []byte("y"), 0o600))

	h, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := h.LastCommitTime(filepath.Join(dir, "untracked.md"))
	require.NoError(t, err)
	require.False(t, ok)

	outside := filepath.Join(t.TempDir(), "elsewhere.md")
	_, ok, err = h.LastCommitTime(outside)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLastCommitTime_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	h, err := Open(dir)
	require.NoError(t, err)
	_, ok, err := h.LastCommitTime(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpen_NoRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNoRepository)
}
