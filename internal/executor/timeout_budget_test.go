package executor

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestUsableSecondsAppliesReserve(t *testing.T) {
	b := NewTimeoutBudget(1000)
	if !almostEqual(b.UsableSeconds(), 900) {
		t.Errorf("expected usable=900, got %f", b.UsableSeconds())
	}
	if !almostEqual(b.ReserveSeconds(), 100) {
		t.Errorf("expected reserve=100, got %f", b.ReserveSeconds())
	}
}

func TestAllocateChildrenEqual(t *testing.T) {
	b := NewTimeoutBudget(1000)
	out, err := b.AllocateChildren([]string{"a", "b", "c"}, PolicyEqual, nil, 0)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	want := 900.0 / 3
	for id, seconds := range out {
		if !almostEqual(seconds, want) {
			t.Errorf("agent %s: expected %f, got %f", id, want, seconds)
		}
	}
}

func TestAllocateChildrenWeighted(t *testing.T) {
	b := NewTimeoutBudget(1000)
	weights := map[string]float64{"a": 1, "b": 3}
	out, err := b.AllocateChildren([]string{"a", "b"}, PolicyWeighted, weights, 0)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !almostEqual(out["a"], 225) || !almostEqual(out["b"], 675) {
		t.Errorf("unexpected weighted split: %+v", out)
	}
}

func TestAllocateChildrenParallelSharesUsable(t *testing.T) {
	b := NewTimeoutBudget(1000)
	out, err := b.AllocateChildren([]string{"a", "b"}, PolicyParallel, nil, 0)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !almostEqual(out["a"], 900) || !almostEqual(out["b"], 900) {
		t.Errorf("expected both to get full usable, got %+v", out)
	}
}

func TestAllocationClampedToMinChildTimeout(t *testing.T) {
	b := NewTimeoutBudget(100, WithMinChildTimeout(60))
	out, err := b.AllocateChildren([]string{"a", "b", "c", "d"}, PolicyEqual, nil, 0)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	for id, seconds := range out {
		if seconds < 60 {
			t.Errorf("agent %s allocation %f below min child timeout", id, seconds)
		}
	}
}

func TestStartCompleteAgentLifecycle(t *testing.T) {
	b := NewTimeoutBudget(600)
	if _, err := b.AllocateChildren([]string{"a"}, PolicyEqual, nil, 0); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := b.StartAgent("a"); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := b.CompleteAgent("a"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	summary, ok := b.GetAgentSummary("a")
	if !ok {
		t.Fatal("expected agent summary to exist")
	}
	if summary.UsedSeconds <= 0 {
		t.Error("expected positive used seconds")
	}
}

func TestCreateChildBudgetUsesRemaining(t *testing.T) {
	parent := NewTimeoutBudget(1000)
	if _, err := parent.AllocateChildren([]string{"a"}, PolicyEqual, nil, 0); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := parent.StartAgent("a"); err != nil {
		t.Fatalf("start: %v", err)
	}
	child, err := parent.CreateChildBudget("a")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.TotalSeconds <= 0 || child.TotalSeconds > 900 {
		t.Errorf("expected child total derived from remaining, got %f", child.TotalSeconds)
	}
}

func TestHierarchicalPresetMath(t *testing.T) {
	b := HierarchicalBudget(10)
	want := (10.0 * 60 * 1.3) / 0.9
	if !almostEqual(b.TotalSeconds, want) {
		t.Errorf("expected total=%f, got %f", want, b.TotalSeconds)
	}
}
