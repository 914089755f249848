package mission

import (
	"path/filepath"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.json")
	return NewEngine(path), path
}

func TestCreateStartsInPlanning(t *testing.T) {
	e, _ := newTestEngine(t)
	m, err := e.Create("abc12345", "build a thing", "/tmp/ws", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.CurrentStage != StagePlanning {
		t.Errorf("expected PLANNING, got %s", m.CurrentStage)
	}
	if m.CurrentCycle != 1 {
		t.Errorf("expected cycle 1, got %d", m.CurrentCycle)
	}
}

func TestLinearAdvance(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Create("abc12345", "x", "/tmp/ws", 3); err != nil {
		t.Fatalf("create: %v", err)
	}
	m, err := e.Advance("abc12345", true)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if m.CurrentStage != StageBuilding {
		t.Errorf("expected BUILDING, got %s", m.CurrentStage)
	}
	m, err = e.Advance("abc12345", true)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if m.CurrentStage != StageTesting {
		t.Errorf("expected TESTING, got %s", m.CurrentStage)
	}
}

func TestTestingFailureReturnsToBuilding(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Create("abc12345", "x", "/tmp/ws", 3)
	e.Advance("abc12345", true) // -> BUILDING
	e.Advance("abc12345", true) // -> TESTING
	m, err := e.Advance("abc12345", false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if m.CurrentStage != StageBuilding {
		t.Errorf("expected TESTING failure to return to BUILDING, got %s", m.CurrentStage)
	}
}

func TestCycleEndRollsOverUntilBudgetExhausted(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Create("abc12345", "x", "/tmp/ws", 1)
	e.Advance("abc12345", true) // BUILDING
	e.Advance("abc12345", true) // TESTING
	e.Advance("abc12345", true) // ANALYZING
	e.Advance("abc12345", true) // CYCLE_END

	m, err := e.AdvanceCycleEnd("abc12345")
	if err != nil {
		t.Fatalf("advance cycle end: %v", err)
	}
	if m.CurrentStage != StageComplete {
		t.Errorf("expected COMPLETE after budget exhausted, got %s", m.CurrentStage)
	}
}

func TestCompleteMissionRejectsMutation(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Create("abc12345", "x", "/tmp/ws", 1)
	for _, ok := range []bool{true, true, true, true} {
		e.Advance("abc12345", ok)
	}
	e.AdvanceCycleEnd("abc12345")

	if _, err := e.Advance("abc12345", true); err == nil {
		t.Error("expected error advancing a completed mission")
	}
}

func TestStageWritePermissions(t *testing.T) {
	e, _ := newTestEngine(t)
	m, _ := e.Create("abc12345", "x", "/tmp/ws", 3)

	if err := e.CheckWrite(m, "artifacts/plan.md"); err != nil {
		t.Errorf("expected PLANNING to allow artifacts write: %v", err)
	}
	if err := e.CheckWrite(m, "src/main.go"); err == nil {
		t.Error("expected PLANNING to deny full-workspace write")
	}
}
