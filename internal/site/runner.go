package site

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Warnings are recorded and the build goes on.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.Builder.recorder
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.Name, err)
			bs.Report.recordStage(st.Name, 0, se)
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		}
		if state, ok := stageStates[st.Name]; ok {
			if err := bs.Builder.state.transition(state); err != nil {
				return newFatalStageError(st.Name, err)
			}
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		se := classifyStageError(st.Name, err)
		bs.Report.recordStage(st.Name, dur, se)
		rec.ObserveStageDuration(string(st.Name), dur)
		rec.IncStageResult(string(st.Name), resultLabel(se))

		if se == nil {
			slog.Debug("Stage complete", logfields.Stage(string(st.Name)), logfields.Duration(dur))
			continue
		}
		if se.Kind == StageErrorWarning {
			slog.Warn("Stage completed with warning", logfields.Stage(string(st.Name)), logfields.Error(se.Err))
			continue
		}
		return se
	}
	return nil
}

// classifyStageError wraps plain errors as fatal.
func classifyStageError(stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newCanceledStageError(stage, err)
	}
	return newFatalStageError(stage, err)
}

func resultLabel(se *StageError) metrics.ResultLabel {
	if se == nil {
		return metrics.ResultSuccess
	}
	switch se.Kind {
	case StageErrorWarning:
		return metrics.ResultWarning
	case StageErrorCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
