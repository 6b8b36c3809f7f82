package site

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	"git.home.luguber.info/inful/postbuilder/internal/dates"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/post"
	"git.home.luguber.info/inful/postbuilder/internal/render"
)

// ErrBuilderUsed is returned when Build is called more than once.
var ErrBuilderUsed = errors.New("builder already ran; create a new one")

// Builder runs one site build.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	resolver *dates.Resolver
	compiler *post.Compiler
	renderer *render.Renderer
	stages   []StageDef
	state    *stateMachine
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder injects a metrics recorder. Nil keeps the NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithResolver replaces the date resolver derived from the configuration.
func WithResolver(r *dates.Resolver) Option {
	return func(b *Builder) { b.resolver = r }
}

// NewBuilder prepares a build of the site described by cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		stages:   defaultStages(),
		state:    &stateMachine{state: StateInit},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.resolver == nil {
		b.resolver = dates.FromConfig(cfg)
	}

	engine := markdown.New(markdown.Options{
		GFM:            cfg.Markdown.GFM,
		EscapeHTML:     cfg.Markdown.EscapeHTML,
		HardWraps:      cfg.Markdown.HardWraps,
		HighlightStyle: cfg.HighlightStyle,
	})
	var compilerOpts []post.CompilerOption
	if cfg.SanitizeHTML {
		compilerOpts = append(compilerOpts, post.WithSanitizer())
	}
	b.compiler = post.NewCompiler(engine, compilerOpts...)
	b.renderer = render.New(cfg.TemplatePath(), render.Options{
		PostTemplate:  cfg.PostTemplate,
		IndexTemplate: cfg.IndexTemplate,
		Lenient:       cfg.LenientTemplates,
	})
	return b
}

// State returns the current lifecycle state.
func (b *Builder) State() State { return b.state.Current() }

// Build runs every stage and returns the report. The error is non-nil when
// a stage failed or the context was canceled; the report is always returned.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport()
	if b.State() != StateInit {
		return report, ErrBuilderUsed
	}
	log := slog.With(logfields.BuildID(report.BuildID))
	log.Info("Build started",
		logfields.Path(b.cfg.SourcePath()),
		slog.String("output", b.cfg.OutputPath()),
		slog.Any("date_strategies", b.resolver.Strategies()))

	bs := newBuildState(b, report)
	err := runStages(ctx, bs, b.stages)
	report.finish()

	if err != nil {
		_ = b.state.transition(StateFailed)
		log.Error("Build failed", logfields.Error(err), logfields.Duration(report.Duration()))
	} else {
		_ = b.state.transition(StateDone)
		log.Info("Build complete",
			logfields.Count(len(report.Posts)),
			slog.Int("pages_written", report.PagesWritten),
			slog.Int("pages_unchanged", report.PagesUnchanged),
			slog.String("outcome", string(report.Outcome)),
			logfields.Duration(report.Duration()))
	}

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))
	b.export(log, report)
	return report, err
}

// textfileWriter is implemented by recorders that can be flushed to disk.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// export persists the report and metrics when configured. Failures are
// logged and do not change the build outcome.
func (b *Builder) export(log *slog.Logger, report *BuildReport) {
	if b.cfg.ReportFile != "" {
		path := b.cfg.Path(b.cfg.ReportFile)
		if err := report.Persist(path); err != nil {
			log.Warn("Failed to write build report", logfields.Path(path), logfields.Error(err))
		}
	}
	if b.cfg.MetricsFile != "" {
		path := b.cfg.Path(b.cfg.MetricsFile)
		w, ok := b.recorder.(textfileWriter)
		if !ok {
			log.Warn("Metrics file configured but recorder cannot export", logfields.Path(path))
			return
		}
		if err := w.WriteTextfile(path); err != nil {
			log.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(err))
		}
	}
}

// workerCount returns the pool size for n tasks.
func (b *Builder) workerCount(n int) int {
	w := b.cfg.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}
