// Package usage provides a lightweight, debounced, process-local token
// counter used for quick operator-facing totals. It keeps running totals
// only, with no deduplication and no per-event records — this tracker
// exists for cheap ambient visibility (e.g. a `status` CLI line), not
// for billing-grade accounting.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type (
	missionKey struct{}
	stageKey   struct{}
	sessionKey struct{}
	trackerKey struct{}
)

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu            sync.Mutex
	data          UsageData
	filePath      string
	dirty         bool
	autoSaveTimer *time.Timer
}

// NewTracker creates a new usage tracker persisting under dataRoot/usage.json.
func NewTracker(dataRoot string) (*Tracker, error) {
	if err := os.MkdirAll(dataRoot, 0755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}

	t := &Tracker{
		filePath: filepath.Join(dataRoot, "usage.json"),
		data: UsageData{
			Version: "1.0",
			Aggregate: AggregatedStats{
				ByProvider: make(map[string]TokenCounts),
				ByModel:    make(map[string]TokenCounts),
				ByMission:  make(map[string]TokenCounts),
				ByStage:    make(map[string]TokenCounts),
				BySession:  make(map[string]TokenCounts),
			},
		},
	}

	_ = t.Load()
	return t, nil
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}

	if t.data.Aggregate.ByProvider == nil {
		t.data.Aggregate.ByProvider = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByModel == nil {
		t.data.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByMission == nil {
		t.data.Aggregate.ByMission = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByStage == nil {
		t.data.Aggregate.ByStage = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.BySession == nil {
		t.data.Aggregate.BySession = make(map[string]TokenCounts)
	}
	return nil
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records a new usage event, reading mission/stage/session metadata
// from ctx if present.
func (t *Tracker) Track(ctx context.Context, model, provider string, input, output int, operation string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mission := stringOr(ctx.Value(missionKey{}), "unknown")
	stage := stringOr(ctx.Value(stageKey{}), "unknown")
	session := stringOr(ctx.Value(sessionKey{}), "unknown")

	t.data.Aggregate.TotalProcess.Add(input, output)
	addToMap(t.data.Aggregate.ByProvider, provider, input, output)
	addToMap(t.data.Aggregate.ByModel, model, input, output)
	addToMap(t.data.Aggregate.ByMission, mission, input, output)
	addToMap(t.data.Aggregate.ByStage, stage, input, output)
	addToMap(t.data.Aggregate.BySession, session, input, output)
	_ = operation

	if !t.dirty {
		t.dirty = true
		t.autoSaveTimer = time.AfterFunc(5*time.Second, func() {
			t.Save()
			t.mu.Lock()
			t.dirty = false
			t.mu.Unlock()
		})
	}
}

// Stats returns a deep copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProvider = copyTokenCountsMap(stats.ByProvider)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByMission = copyTokenCountsMap(stats.ByMission)
	stats.ByStage = copyTokenCountsMap(stats.ByStage)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext retrieves the tracker from the context, if any.
func FromContext(ctx context.Context) *Tracker {
	v, _ := ctx.Value(trackerKey{}).(*Tracker)
	return v
}

// WithMissionContext annotates ctx with mission/stage/session metadata for
// later Track calls.
func WithMissionContext(ctx context.Context, missionID, stage, sessionID string) context.Context {
	ctx = context.WithValue(ctx, missionKey{}, missionID)
	ctx = context.WithValue(ctx, stageKey{}, stage)
	ctx = context.WithValue(ctx, sessionKey{}, sessionID)
	return ctx
}
