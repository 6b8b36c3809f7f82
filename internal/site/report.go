package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// PostEntry summarises one published post.
type PostEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	DateSource  string `json:"date_source"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
}

// BuildReport captures high-level metrics about a site generation run.
type BuildReport struct {
	BuildID         string
	Start           time.Time
	End             time.Time
	Sources         int
	Posts           []PostEntry
	PagesWritten    int
	PagesUnchanged  int
	AssetsPlaced    int
	Errors          []error // fatal errors causing build abortion (at most one)
	Warnings        []error // non-fatal issues (e.g., missing style dir)
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		BuildID:         uuid.NewString(),
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

func (r *BuildReport) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

// Duration is the wall time of the build.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("sources=%d posts=%d written=%d unchanged=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Sources, len(r.Posts), r.PagesWritten, r.PagesUnchanged, r.Duration().Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), r.Outcome)
}

// deriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) deriveOutcome() {
	for _, e := range r.Errors {
		if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

func (r *BuildReport) recordStage(stage StageName, d time.Duration, se *StageError) {
	r.StageDurations[stage] = d
	sc := r.StageCounts[stage]
	if se == nil {
		sc.Success++
		r.StageCounts[stage] = sc
		return
	}
	r.StageErrorKinds[stage] = se.Kind
	switch se.Kind {
	case StageErrorWarning:
		sc.Warning++
		r.Warnings = append(r.Warnings, se)
	case StageErrorCanceled:
		sc.Canceled++
		r.Errors = append(r.Errors, se)
	case StageErrorFatal:
		sc.Fatal++
		r.Errors = append(r.Errors, se)
	}
	r.StageCounts[stage] = sc
}

// buildReportJSON is the serialized form: errors become strings and
// durations milliseconds.
type buildReportJSON struct {
	SchemaVersion    int                   `json:"schema_version"`
	BuildID          string                `json:"build_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	DurationMS       int64                 `json:"duration_ms"`
	Outcome          BuildOutcome          `json:"outcome"`
	Sources          int                   `json:"sources"`
	Posts            []PostEntry           `json:"posts"`
	PagesWritten     int                   `json:"pages_written"`
	PagesUnchanged   int                   `json:"pages_unchanged"`
	AssetsPlaced     int                   `json:"assets_placed"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
}

func (r *BuildReport) serializable() buildReportJSON {
	s := buildReportJSON{
		SchemaVersion:    1,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       r.Duration().Milliseconds(),
		Outcome:          r.Outcome,
		Sources:          r.Sources,
		Posts:            r.Posts,
		PagesWritten:     r.PagesWritten,
		PagesUnchanged:   r.PagesUnchanged,
		AssetsPlaced:     r.AssetsPlaced,
		Errors:           make([]string, 0, len(r.Errors)),
		Warnings:         make([]string, 0, len(r.Warnings)),
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageErrorKinds:  make(map[string]string, len(r.StageErrorKinds)),
		StageCounts:      make(map[string]StageCount, len(r.StageCounts)),
	}
	if s.Posts == nil {
		s.Posts = []PostEntry{}
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	for k, v := range r.StageDurations {
		s.StageDurationsMS[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageErrorKinds {
		s.StageErrorKinds[string(k)] = string(v)
	}
	for k, v := range r.StageCounts {
		s.StageCounts[string(k)] = v
	}
	return s
}

// Persist writes the report as JSON to path, replacing it atomically.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.finish()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}
