// Package mission implements the mission record and stage state
// machine: the PLANNING→BUILDING→TESTING→ANALYZING→CYCLE_END→COMPLETE
// lifecycle each autonomous research-and-development mission runs
// through.
package mission

import "time"

// Stage is a node in the mission lifecycle state machine.
type Stage string

const (
	StagePlanning  Stage = "PLANNING"
	StageBuilding  Stage = "BUILDING"
	StageTesting   Stage = "TESTING"
	StageAnalyzing Stage = "ANALYZING"
	StageCycleEnd  Stage = "CYCLE_END"
	StageComplete  Stage = "COMPLETE"
)

// writableSubpaths lists the workspace subpaths a stage may write to;
// an empty slice with allowAll=true means "full workspace".
var writableSubpaths = map[Stage]struct {
	paths    []string
	allowAll bool
}{
	StagePlanning:  {paths: []string{"artifacts", "research"}},
	StageBuilding:  {allowAll: true},
	StageTesting:   {allowAll: true},
	StageAnalyzing: {paths: []string{"reports/analysis"}},
	StageCycleEnd:  {paths: []string{"artifacts/cycle_reports"}},
	StageComplete:  {},
}

// CanWrite reports whether a stage is permitted to write to the given
// workspace-relative subpath.
func (s Stage) CanWrite(subpath string) bool {
	rule, ok := writableSubpaths[s]
	if !ok {
		return false
	}
	if rule.allowAll {
		return true
	}
	for _, p := range rule.paths {
		if p == subpath || hasPrefix(subpath, p+"/") {
			return true
		}
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Next returns the stage a mission transitions to from s, given
// whether the current stage's gating check (e.g. TESTING's pass/fail)
// succeeded. Non-branching stages ignore passed.
func (s Stage) Next(passed bool) (Stage, bool) {
	switch s {
	case StagePlanning:
		return StageBuilding, true
	case StageBuilding:
		return StageTesting, true
	case StageTesting:
		if passed {
			return StageAnalyzing, true
		}
		return StageBuilding, true
	case StageAnalyzing:
		return StageCycleEnd, true
	case StageCycleEnd:
		// Caller resolves PLANNING (more cycles) vs COMPLETE using
		// cycle budget; CYCLE_END has no unconditional successor.
		return "", false
	case StageComplete:
		return "", false
	}
	return "", false
}

// HistoryEntry records one transition or notable event in a mission's
// lifetime.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Stage     Stage          `json:"stage"`
	Entry     string         `json:"entry"`
	Details   map[string]any `json:"details,omitempty"`
}

// CycleSummary captures the outcome of one completed PLANNING..CYCLE_END
// pass.
type CycleSummary struct {
	Cycle       int       `json:"cycle"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Summary     string    `json:"summary"`
	Outcome     string    `json:"outcome"`
}

// Mission is the root record the Stage Engine owns. current_stage ==
// COMPLETE implies no further mutations; a new cycle starts only while
// current_cycle < cycle_budget, so current_cycle is never advanced past
// cycle_budget.
type Mission struct {
	MissionID        string         `json:"mission_id"`
	ProblemStatement string         `json:"problem_statement"`
	OriginalMission  string         `json:"original_mission"`
	CurrentStage     Stage          `json:"current_stage"`
	CurrentCycle     int            `json:"current_cycle"`
	Iteration        int            `json:"iteration"`
	CycleBudget      int            `json:"cycle_budget"`
	CreatedAt        time.Time      `json:"created_at"`
	LastUpdated      time.Time      `json:"last_updated"`
	MissionWorkspace string         `json:"mission_workspace"`
	History          []HistoryEntry `json:"history"`
	Cycles           []CycleSummary `json:"cycles"`
	FinalSummary     string         `json:"final_summary,omitempty"`
	Deliverables     []string       `json:"deliverables,omitempty"`
}

// IsMutable reports whether the mission may still be written to.
func (m *Mission) IsMutable() bool {
	return m.CurrentStage != StageComplete
}

// CanAdvanceCycle reports whether beginning another cycle is allowed:
// only while current_cycle < cycle_budget, so the cycle numbered
// cycle_budget is the last one.
func (m *Mission) CanAdvanceCycle() bool {
	return m.CurrentCycle < m.CycleBudget
}
