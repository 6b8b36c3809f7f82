package site

import (
	"fmt"
	"sync"

	"git.home.luguber.info/inful/postbuilder/internal/post"
)

// State is the builder's position in the build lifecycle.
type State string

const (
	StateInit         State = "init"
	StateScanning     State = "scanning"
	StateCompiling    State = "compiling"
	StateRendering    State = "rendering"
	StateAssetCopying State = "asset_copying"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// stageStates maps each stage to the state the builder is in while it runs.
var stageStates = map[StageName]State{
	StagePrepareOutput: StateInit,
	StageScanSources:   StateScanning,
	StageCompilePosts:  StateCompiling,
	StageRenderPages:   StateRendering,
	StageCopyAssets:    StateAssetCopying,
}

// lifecycle is the forward order of non-failure states.
var lifecycle = []State{StateInit, StateScanning, StateCompiling, StateRendering, StateAssetCopying, StateDone}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

func (s State) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// stateMachine guards the builder state. Moving backwards or leaving a
// terminal state is an error.
type stateMachine struct {
	mu    sync.Mutex
	state State
}

func (m *stateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *stateMachine) transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := m.state
	switch {
	case from.Terminal():
		return fmt.Errorf("invalid transition %s -> %s: build already finished", from, to)
	case to == StateFailed:
	case to.rank() < from.rank():
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	m.state = to
	return nil
}

// BuildState carries mutable state across stages of one build.
type BuildState struct {
	Builder *Builder
	Report  *BuildReport
	// SourcePaths lists the Markdown files found by scan_sources.
	SourcePaths []string
	Sources     []post.SourceDocument
	Posts       *post.Collection

	mu sync.Mutex // guards report counters updated by workers
}

func newBuildState(b *Builder, report *BuildReport) *BuildState {
	return &BuildState{
		Builder: b,
		Report:  report,
		Posts:   post.NewCollection(),
	}
}
