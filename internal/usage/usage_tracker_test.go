package usage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestTrackAggregatesByDimension(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	ctx := WithMissionContext(context.Background(), "m1", "BUILDING", "s1")
	tr.Track(ctx, "claude-sonnet", "anthropic", 100, 50, "worker")
	tr.Track(ctx, "claude-sonnet", "anthropic", 200, 75, "worker")

	stats := tr.Stats()
	if stats.TotalProcess.Input != 300 || stats.TotalProcess.Output != 125 {
		t.Fatalf("unexpected totals: %+v", stats.TotalProcess)
	}
	if stats.ByMission["m1"].Total != 425 {
		t.Errorf("expected mission total 425, got %d", stats.ByMission["m1"].Total)
	}
	if stats.ByStage["BUILDING"].Total != 425 {
		t.Errorf("expected stage total 425, got %d", stats.ByStage["BUILDING"].Total)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	tr.Track(context.Background(), "m", "anthropic", 10, 5, "worker")
	if err := tr.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	tr2, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if tr2.Stats().TotalProcess.Total != 15 {
		t.Errorf("expected reloaded total 15, got %d", tr2.Stats().TotalProcess.Total)
	}
	if _, err := filepath.Abs(dir); err != nil {
		t.Fatal(err)
	}
}

func TestFromContextMissingReturnsNil(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil tracker from bare context")
	}
}
