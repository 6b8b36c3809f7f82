package site

import (
	"context"
	"fmt"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageScanSources   StageName = "scan_sources"
	StageCompilePosts  StageName = "compile_posts"
	StageRenderPages   StageName = "render_pages"
	StageCopyAssets    StageName = "copy_assets"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// defaultStages is the build pipeline in execution order.
func defaultStages() []StageDef {
	return []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageScanSources, stageScanSources},
		{StageCompilePosts, stageCompilePosts},
		{StageRenderPages, stageRenderPages},
		{StageCopyAssets, stageCopyAssets},
	}
}
