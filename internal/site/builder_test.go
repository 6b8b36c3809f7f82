package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
)

var (
	jan = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 20, 18, 45, 0, 0, time.UTC)
)

func TestBuild_EndToEnd(t *testing.T) {
	s := newTestSite(t)
	s.post("hello_world.md", "# Hello\n\nFirst post.\n\n```go\nfmt.Println(1)\n```\n", jan)
	s.post("second_post.md", "Second.\n", feb)

	b, report, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, StateDone, b.State())
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 2, report.Sources)
	assert.Equal(t, 3, report.PagesWritten)
	assert.Equal(t, 1, report.AssetsPlaced)
	assert.NotEmpty(t, report.BuildID)

	hello := s.read("build/hello_world.html")
	assert.Equal(t, "Hello World", elementText(t, hello, "title"))
	assert.Equal(t, "15 Jan 2024 at 09:30 AM", elementText(t, hello, "time"))
	assert.Contains(t, hello, `class="chroma"`)

	second := s.read("build/second_post.html")
	assert.Equal(t, "Second Post", elementText(t, second, "h1"))

	index := s.read("build/index.html")
	assert.Equal(t, []string{"second_post.html", "hello_world.html"}, indexLinks(t, index))

	assert.Equal(t, "body { margin: 0 }\n", s.read("build/style/main.css"))
	assert.Contains(t, s.read("build/style/codehilite.css"), ".chroma")

	for _, stage := range []StageName{StagePrepareOutput, StageScanSources, StageCompilePosts, StageRenderPages, StageCopyAssets} {
		_, timed := report.StageDurations[stage]
		assert.True(t, timed, "no timing for %s", stage)
		assert.Equal(t, 1, report.StageCounts[stage].Success, stage)
	}
}

func TestBuild_EmptySource(t *testing.T) {
	s := newTestSite(t)

	b, report, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, StateDone, b.State())
	assert.Empty(t, report.Posts)
	assert.Empty(t, indexLinks(t, s.read("build/index.html")))
}

func TestBuild_RebuildIsIdempotent(t *testing.T) {
	s := newTestSite(t)
	s.post("hello_world.md", "# Hello\n", jan)
	s.post("second_post.md", "Second.\n", feb)

	_, first, err := s.build()
	require.NoError(t, err)
	before := snapshot(t, s.path("build"))

	_, second, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(t, s.path("build")))
	assert.Equal(t, 3, first.PagesWritten)
	assert.Zero(t, second.PagesWritten)
	assert.Equal(t, 3, second.PagesUnchanged)
}

func TestBuild_FrontMatterOverridesTitleAndDate(t *testing.T) {
	s := newTestSite(t)
	s.post("hello_world.md", "title: Custom Name\ndate: 2025-03-01 12:00\n\n# Body\n", jan)
	s.post("second_post.md", "Second.\n", feb)

	_, report, err := s.build()
	require.NoError(t, err)

	page := s.read("build/hello_world.html")
	assert.Equal(t, "Custom Name", elementText(t, page, "h1"))
	assert.Equal(t, "01 Mar 2025 at 12:00 PM", elementText(t, page, "time"))
	assert.Equal(t, []string{"hello_world.html", "second_post.html"}, indexLinks(t, s.read("build/index.html")))
	assert.Equal(t, string(config.DateFromFrontMatter), report.Posts[0].DateSource)
}

func TestBuild_IdenticalDatesKeepNameOrder(t *testing.T) {
	s := newTestSite(t)
	for _, name := range []string{"c.md", "a.md", "b.md"} {
		s.post(name, "x\n", jan)
	}

	_, _, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html", "c.html"}, indexLinks(t, s.read("build/index.html")))
}

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	s := newTestSite(t)
	for i := range 40 {
		// Five distinct dates so most posts tie with others.
		s.post(fmt.Sprintf("post_%02d.md", i), fmt.Sprintf("Post %d\n", i), jan.Add(time.Duration(i%5)*time.Hour))
	}

	s.cfg.Workers = 1
	s.cfg.OutputDir = "seq"
	_, _, err := s.build()
	require.NoError(t, err)

	s.cfg.Workers = 8
	s.cfg.OutputDir = "par"
	_, _, err = s.build()
	require.NoError(t, err)

	seq := indexLinks(t, s.read("seq/index.html"))
	require.Len(t, seq, 40)
	assert.Equal(t, seq, indexLinks(t, s.read("par/index.html")))
	assert.Equal(t, snapshot(t, s.path("seq")), snapshot(t, s.path("par")))
}

func TestBuild_MissingSourceIsFatal(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.Remove(s.path("src")))

	b, report, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategorySourceRead), "got %v", err)
	assert.Equal(t, StateFailed, b.State())
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, StageErrorFatal, report.StageErrorKinds[StageScanSources])
}

func TestBuild_MissingTemplateIsFatal(t *testing.T) {
	s := newTestSite(t)
	s.post("a.md", "x\n", jan)
	require.NoError(t, os.Remove(s.path("template/post.html")))

	b, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate), "got %v", err)
	assert.Equal(t, StateFailed, b.State())
	assert.NoDirExists(t, s.path("build"))
}

func TestBuild_MissingTemplateVariableIsFatal(t *testing.T) {
	s := newTestSite(t)
	s.post("a.md", "x\n", jan)
	s.write("template/post.html", "{{title}} {{author}}")

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate), "got %v", err)

	s.cfg.LenientTemplates = true
	_, _, err = s.build()
	require.NoError(t, err)
	assert.Equal(t, "A ", s.read("build/a.html"))
}

func TestBuild_MalformedFrontMatterIsCompileError(t *testing.T) {
	s := newTestSite(t)
	s.post("good.md", "fine\n", jan)
	s.post("broken.md", "---\ntitle: [unclosed\n---\nbody\n", jan)

	b, report, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryCompile), "got %v", err)
	assert.Contains(t, err.Error(), "broken.md")
	assert.Equal(t, StateFailed, b.State())
	assert.Equal(t, StageErrorFatal, report.StageErrorKinds[StageCompilePosts])
	assert.NoFileExists(t, s.path("build/index.html"))
}

func TestBuild_InvalidUTF8IsSourceReadError(t *testing.T) {
	s := newTestSite(t)
	s.post("bad.md", "caf\xe9\n", jan)

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategorySourceRead), "got %v", err)
	assert.Contains(t, err.Error(), "bad.md")
}

func TestBuild_IndexCollision(t *testing.T) {
	s := newTestSite(t)
	s.post("index.md", "x\n", jan)

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryFileSystem), "got %v", err)
}

func TestBuild_OutputPathIsFile(t *testing.T) {
	s := newTestSite(t)
	s.write("build", "not a dir")

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryFileSystem), "got %v", err)
}

func TestBuild_CleanRemovesStaleOutput(t *testing.T) {
	s := newTestSite(t)
	s.post("a.md", "x\n", jan)
	s.write("build/stale.html", "old")

	_, _, err := s.build()
	require.NoError(t, err)
	assert.FileExists(t, s.path("build/stale.html"))

	s.cfg.Clean = true
	_, _, err = s.build()
	require.NoError(t, err)
	assert.NoFileExists(t, s.path("build/stale.html"))
	assert.FileExists(t, s.path("build/a.html"))
}

func TestBuild_MissingStyleIsWarning(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.RemoveAll(s.path("style")))
	s.post("a.md", "x\n", jan)

	b, report, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, StateDone, b.State())
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, StageErrorWarning, report.StageErrorKinds[StageCopyAssets])
	assert.FileExists(t, s.path("build/style/codehilite.css"))
}

func TestBuild_Canceled(t *testing.T) {
	s := newTestSite(t)
	s.post("a.md", "x\n", jan)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := s.builder()
	report, err := b.Build(ctx)
	require.Error(t, err)
	assert.Equal(t, StateFailed, b.State())
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Equal(t, StageErrorCanceled, report.StageErrorKinds[StagePrepareOutput])
}

func TestBuilder_SingleUse(t *testing.T) {
	s := newTestSite(t)
	b := s.builder()
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	_, err = b.Build(context.Background())
	require.ErrorIs(t, err, ErrBuilderUsed)
	assert.Equal(t, StateDone, b.State())
}

func TestBuild_WritesReportAndMetrics(t *testing.T) {
	s := newTestSite(t)
	s.post("hello_world.md", "# Hi\n", jan)
	s.cfg.ReportFile = "reports/build.json"
	s.cfg.MetricsFile = "postbuilder.prom"

	_, report, err := s.build(WithRecorder(metrics.NewPrometheusRecorder(nil)))
	require.NoError(t, err)

	var persisted struct {
		BuildID string      `json:"build_id"`
		Outcome string      `json:"outcome"`
		Posts   []PostEntry `json:"posts"`
	}
	require.NoError(t, json.Unmarshal([]byte(s.read("reports/build.json")), &persisted))
	assert.Equal(t, report.BuildID, persisted.BuildID)
	assert.Equal(t, "success", persisted.Outcome)
	require.Len(t, persisted.Posts, 1)
	assert.Equal(t, "hello_world", persisted.Posts[0].Slug)
	assert.NotEmpty(t, persisted.Posts[0].Fingerprint)

	prom := s.read("postbuilder.prom")
	assert.Contains(t, prom, `postbuilder_build_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, prom, "postbuilder_posts_compiled_total 1")
}

func TestBuild_GitDates(t *testing.T) {
	s := newTestSite(t)
	repo, err := git.PlainInit(s.root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	committed := time.Date(2020, 7, 4, 16, 20, 0, 0, time.UTC)
	s.post("old.md", "Old.\n", feb)
	_, err = wt.Add("src/old.md")
	require.NoError(t, err)
	_, err = wt.Commit("add old", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: committed},
	})
	require.NoError(t, err)
	s.post("draft.md", "Draft.\n", jan)

	// The default resolver order is front matter, git, mtime.
	b := NewBuilder(s.cfg)
	report, err := b.Build(context.Background())
	require.NoError(t, err)

	sources := map[string]string{}
	for _, p := range report.Posts {
		sources[p.Slug] = p.DateSource
	}
	assert.Equal(t, string(config.DateFromGit), sources["old"])
	assert.Equal(t, string(config.DateFromModTime), sources["draft"])
	assert.Equal(t, "04 Jul 2020 at 04:20 PM", elementText(t, s.read("build/old.html"), "time"))
	assert.Equal(t, []string{"draft.html", "old.html"}, indexLinks(t, s.read("build/index.html")))
}

func TestBuild_StageErrorCarriesSiteError(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.Remove(s.path("src")))

	_, _, err := s.build()
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageScanSources, se.Stage)
	siteErr, ok := sberrors.As(err)
	require.True(t, ok)
	assert.Equal(t, s.path("src"), siteErr.Context["path"])
}
