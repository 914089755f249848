package usage

import "time"

// UsageData represents the root structure stored in persistence.
type UsageData struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// UsageEvent represents a single LLM transaction observed ambiently by the
// process, independent of the durable per-mission Analytics Store.
type UsageEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	Model         string    `json:"model"`
	Provider      string    `json:"provider"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	MissionID     string    `json:"mission_id"`
	Stage         string    `json:"stage"`
	SessionID     string    `json:"session_id"`
	OperationType string    `json:"operation_type"` // worker, subagent, planning_context
}

// AggregatedStats holds counters broken down by various dimensions.
type AggregatedStats struct {
	TotalProcess TokenCounts            `json:"total_process"`
	ByProvider   map[string]TokenCounts `json:"by_provider"`
	ByModel      map[string]TokenCounts `json:"by_model"`
	ByMission    map[string]TokenCounts `json:"by_mission"`
	ByStage      map[string]TokenCounts `json:"by_stage"`
	BySession    map[string]TokenCounts `json:"by_session"`
}

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Input  int64   `json:"input"`
	Output int64   `json:"output"`
	Total  int64   `json:"total"`
	Cost   float64 `json:"cost_est_usd,omitempty"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
