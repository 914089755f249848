package mission

import (
	"fmt"
	"time"

	"github.com/atlasforge/missionforge/internal/atomicstore"
	"github.com/atlasforge/missionforge/internal/logging"
)

// ErrMissionComplete is returned by any mutating call once a mission
// has reached StageComplete.
var ErrMissionComplete = fmt.Errorf("mission: stage engine: mission is complete, no further mutations allowed")

// ErrWriteDenied is returned when an attempted write targets a
// workspace subpath the mission's current stage does not permit.
var ErrWriteDenied = fmt.Errorf("mission: stage engine: write denied for current stage")

// Engine owns the mission record at recordPath and mediates every
// stage transition and workspace write-permission check.
type Engine struct {
	recordPath string
}

// NewEngine returns an engine for the mission record at recordPath. It
// neither reads nor creates the record: Create writes it, Load reads it.
func NewEngine(recordPath string) *Engine {
	return &Engine{recordPath: recordPath}
}

// Load reads the current mission record.
func (e *Engine) Load() (Mission, error) {
	m := atomicstore.ReadJSON(e.recordPath, Mission{})
	if m.MissionID == "" {
		return Mission{}, fmt.Errorf("mission: no record at %s", e.recordPath)
	}
	return m, nil
}

// Create persists a brand-new mission record in PLANNING with
// current_cycle=1.
func (e *Engine) Create(missionID, problemStatement, workspace string, cycleBudget int) (Mission, error) {
	now := time.Now()
	m := Mission{
		MissionID:        missionID,
		ProblemStatement: problemStatement,
		OriginalMission:  problemStatement,
		CurrentStage:     StagePlanning,
		CurrentCycle:     1,
		Iteration:        0,
		CycleBudget:      cycleBudget,
		CreatedAt:        now,
		LastUpdated:      now,
		MissionWorkspace: workspace,
		History: []HistoryEntry{
			{Timestamp: now, Stage: StagePlanning, Entry: "mission created"},
		},
	}
	if err := atomicstore.WriteJSON(e.recordPath, m); err != nil {
		return Mission{}, fmt.Errorf("mission: create: %w", err)
	}
	logging.Mission("created mission %s (cycle_budget=%d)", missionID, cycleBudget)
	return m, nil
}

// CheckWrite enforces the stage write-permission table before any
// caller writes workspace-relative subpath.
func (e *Engine) CheckWrite(m Mission, subpath string) error {
	if !m.IsMutable() {
		return ErrMissionComplete
	}
	if !m.CurrentStage.CanWrite(subpath) {
		return fmt.Errorf("%w: stage=%s subpath=%s", ErrWriteDenied, m.CurrentStage, subpath)
	}
	return nil
}

// Advance transitions the mission from its current stage, given
// whether the stage's own gate (e.g. TESTING pass/fail) succeeded. For
// CYCLE_END the caller must use AdvanceCycleEnd instead, since the
// successor depends on cycle budget, not a pass/fail gate.
func (e *Engine) Advance(missionID string, passed bool) (Mission, error) {
	return e.transition(missionID, func(m Mission) (Mission, error) {
		if !m.IsMutable() {
			return m, ErrMissionComplete
		}
		if m.CurrentStage == StageCycleEnd {
			return m, fmt.Errorf("mission: use AdvanceCycleEnd to leave CYCLE_END")
		}
		next, ok := m.CurrentStage.Next(passed)
		if !ok {
			return m, fmt.Errorf("mission: stage %s has no unconditional successor", m.CurrentStage)
		}
		return e.recordTransition(m, next, passed), nil
	})
}

// AdvanceCycleEnd resolves CYCLE_END's branch: another cycle
// (back to PLANNING) if the cycle budget allows it, otherwise
// COMPLETE.
func (e *Engine) AdvanceCycleEnd(missionID string) (Mission, error) {
	return e.transition(missionID, func(m Mission) (Mission, error) {
		if !m.IsMutable() {
			return m, ErrMissionComplete
		}
		if m.CurrentStage != StageCycleEnd {
			return m, fmt.Errorf("mission: AdvanceCycleEnd called outside CYCLE_END (current=%s)", m.CurrentStage)
		}
		now := time.Now()
		m.Cycles = append(m.Cycles, CycleSummary{
			Cycle:       m.CurrentCycle,
			CompletedAt: now,
			Outcome:     "cycle_complete",
		})
		if m.CanAdvanceCycle() {
			m.CurrentCycle++
			m.Iteration = 0
			return e.recordTransition(m, StagePlanning, true), nil
		}
		return e.recordTransition(m, StageComplete, true), nil
	})
}

func (e *Engine) recordTransition(m Mission, next Stage, passed bool) Mission {
	now := time.Now()
	entry := fmt.Sprintf("%s -> %s", m.CurrentStage, next)
	m.History = append(m.History, HistoryEntry{
		Timestamp: now,
		Stage:     next,
		Entry:     entry,
		Details:   map[string]any{"passed": passed},
	})
	logging.Stage("mission %s: %s", m.MissionID, entry)
	m.CurrentStage = next
	m.LastUpdated = now
	return m
}

func (e *Engine) transition(missionID string, fn func(Mission) (Mission, error)) (Mission, error) {
	var transitionErr error
	updated, err := atomicstore.UpdateJSON(e.recordPath, func(m Mission) Mission {
		next, terr := fn(m)
		if terr != nil {
			transitionErr = terr
			return m
		}
		return next
	}, Mission{MissionID: missionID})
	if err != nil {
		return Mission{}, fmt.Errorf("mission: transition: %w", err)
	}
	if transitionErr != nil {
		logging.StageError("mission %s: transition rejected: %v", missionID, transitionErr)
		return updated, transitionErr
	}
	return updated, nil
}
