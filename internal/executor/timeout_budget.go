// Package executor implements the hierarchical parallel-agent runner:
// timeout budgeting, worker/sub-agent fan-out, and result aggregation.
package executor

import (
	"fmt"
	"time"
)

// Policy selects how a TimeoutBudget divides its usable seconds among
// children.
type Policy string

const (
	PolicyEqual     Policy = "EQUAL"
	PolicyWeighted  Policy = "WEIGHTED"
	PolicyFixed     Policy = "FIXED"
	PolicyFirstCome Policy = "FIRST_COME"
	PolicyParallel  Policy = "PARALLEL"
)

const (
	defaultReserveRatio    = 0.10
	defaultMinChildTimeout = 60 * time.Second
)

// TimeAllocation tracks one agent's slice of a TimeoutBudget.
type TimeAllocation struct {
	AgentID         string
	AllocatedSeconds float64
	StartedAt       *time.Time
	CompletedAt     *time.Time
	UsedSeconds     float64
}

func (a *TimeAllocation) IsStarted() bool  { return a.StartedAt != nil }
func (a *TimeAllocation) IsComplete() bool { return a.CompletedAt != nil }

// Elapsed returns time since start, or zero if not yet started.
func (a *TimeAllocation) Elapsed(now time.Time) float64 {
	if a.StartedAt == nil {
		return 0
	}
	end := now
	if a.CompletedAt != nil {
		end = *a.CompletedAt
	}
	return end.Sub(*a.StartedAt).Seconds()
}

// Remaining returns the allocation minus elapsed, floored at zero, while
// the agent is running. Before StartAgent and after CompleteAgent it
// returns the full allocation.
func (a *TimeAllocation) Remaining(now time.Time) float64 {
	if !a.IsStarted() || a.IsComplete() {
		return a.AllocatedSeconds
	}
	remaining := a.AllocatedSeconds - a.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (a *TimeAllocation) IsOverBudget(now time.Time) bool {
	return a.IsStarted() && !a.IsComplete() && a.Elapsed(now) > a.AllocatedSeconds
}

// TimeoutBudget is a hierarchical time pool: a fixed total is reserved
// (reserve_ratio) and the remainder is distributed among children by
// Policy. Child budgets can be derived from a parent's remaining
// allocation for a given agent, compounding the reserve at each level.
type TimeoutBudget struct {
	TotalSeconds    float64
	ReserveRatio    float64
	MinChildTimeout float64
	DefaultPolicy   Policy
	CreatedAt       time.Time

	allocations map[string]*TimeAllocation
}

// NewTimeoutBudget constructs a budget with the teacher-idiom defaults
// (10% reserve, 60s minimum child timeout) unless overridden.
func NewTimeoutBudget(totalSeconds float64, opts ...func(*TimeoutBudget)) *TimeoutBudget {
	b := &TimeoutBudget{
		TotalSeconds:    totalSeconds,
		ReserveRatio:    defaultReserveRatio,
		MinChildTimeout: defaultMinChildTimeout.Seconds(),
		DefaultPolicy:   PolicyEqual,
		CreatedAt:       time.Now(),
		allocations:     make(map[string]*TimeAllocation),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func WithReserveRatio(r float64) func(*TimeoutBudget) {
	return func(b *TimeoutBudget) { b.ReserveRatio = r }
}

func WithMinChildTimeout(seconds float64) func(*TimeoutBudget) {
	return func(b *TimeoutBudget) { b.MinChildTimeout = seconds }
}

func WithPolicy(p Policy) func(*TimeoutBudget) {
	return func(b *TimeoutBudget) { b.DefaultPolicy = p }
}

// UsableSeconds is the total minus the reserved slice.
func (b *TimeoutBudget) UsableSeconds() float64 {
	return b.TotalSeconds * (1 - b.ReserveRatio)
}

func (b *TimeoutBudget) ReserveSeconds() float64 {
	return b.TotalSeconds * b.ReserveRatio
}

func (b *TimeoutBudget) Elapsed(now time.Time) float64 {
	return now.Sub(b.CreatedAt).Seconds()
}

func (b *TimeoutBudget) Remaining(now time.Time) float64 {
	r := b.UsableSeconds() - b.Elapsed(now)
	if r < 0 {
		return 0
	}
	return r
}

func (b *TimeoutBudget) IsExpired(now time.Time) bool {
	return b.Elapsed(now) >= b.UsableSeconds()
}

func (b *TimeoutBudget) AllocatedTotal() float64 {
	var sum float64
	for _, a := range b.allocations {
		sum += a.AllocatedSeconds
	}
	return sum
}

func (b *TimeoutBudget) Unallocated() float64 {
	u := b.UsableSeconds() - b.AllocatedTotal()
	if u < 0 {
		return 0
	}
	return u
}

// AllocateChildren assigns seconds to each agentID per policy, clamped
// to at least MinChildTimeout. weights is required for WEIGHTED and
// ignored otherwise; fixedSeconds is required for FIXED.
func (b *TimeoutBudget) AllocateChildren(agentIDs []string, policy Policy, weights map[string]float64, fixedSeconds float64) (map[string]float64, error) {
	if len(agentIDs) == 0 {
		return map[string]float64{}, nil
	}
	usable := b.UsableSeconds()
	n := float64(len(agentIDs))
	out := make(map[string]float64, len(agentIDs))

	switch policy {
	case PolicyParallel:
		for _, id := range agentIDs {
			out[id] = usable
		}
	case PolicyEqual:
		share := usable / n
		for _, id := range agentIDs {
			out[id] = share
		}
	case PolicyWeighted:
		var total float64
		for _, id := range agentIDs {
			total += weights[id]
		}
		if total <= 0 {
			return nil, fmt.Errorf("timeout budget: weighted policy requires positive total weight")
		}
		for _, id := range agentIDs {
			out[id] = usable * weights[id] / total
		}
	case PolicyFixed:
		available := usable / n
		for _, id := range agentIDs {
			if fixedSeconds < available {
				out[id] = fixedSeconds
			} else {
				out[id] = available
			}
		}
	case PolicyFirstCome:
		for _, id := range agentIDs {
			out[id] = usable
		}
	default:
		return nil, fmt.Errorf("timeout budget: unknown policy %q", policy)
	}

	for id, seconds := range out {
		if seconds < b.MinChildTimeout {
			seconds = b.MinChildTimeout
		}
		out[id] = seconds
		b.allocations[id] = &TimeAllocation{AgentID: id, AllocatedSeconds: seconds}
	}
	return out, nil
}

// StartAgent marks an allocation's start time.
func (b *TimeoutBudget) StartAgent(agentID string) error {
	a, ok := b.allocations[agentID]
	if !ok {
		return fmt.Errorf("timeout budget: no allocation for agent %q", agentID)
	}
	now := time.Now()
	a.StartedAt = &now
	return nil
}

// CompleteAgent marks an allocation complete and records used seconds.
func (b *TimeoutBudget) CompleteAgent(agentID string) error {
	a, ok := b.allocations[agentID]
	if !ok {
		return fmt.Errorf("timeout budget: no allocation for agent %q", agentID)
	}
	now := time.Now()
	a.CompletedAt = &now
	a.UsedSeconds = a.Elapsed(now)
	return nil
}

func (b *TimeoutBudget) GetRemaining(agentID string) float64 {
	a, ok := b.allocations[agentID]
	if !ok {
		return 0
	}
	return a.Remaining(time.Now())
}

func (b *TimeoutBudget) IsAgentOverBudget(agentID string) bool {
	a, ok := b.allocations[agentID]
	if !ok {
		return false
	}
	return a.IsOverBudget(time.Now())
}

// GetTimeoutForCLI returns the allocated seconds as a time.Duration
// suitable for a context.WithTimeout call wrapping an LLM invocation.
func (b *TimeoutBudget) GetTimeoutForCLI(agentID string) time.Duration {
	a, ok := b.allocations[agentID]
	if !ok {
		return time.Duration(b.MinChildTimeout) * time.Second
	}
	return time.Duration(a.AllocatedSeconds * float64(time.Second))
}

// ReclaimUnused reports how many of a completed agent's allocated
// seconds went unused (zero for an unknown or unfinished agent). It
// changes no allocation, and AllocateChildren does not add the
// returned seconds to what it hands out.
func (b *TimeoutBudget) ReclaimUnused(agentID string) float64 {
	a, ok := b.allocations[agentID]
	if !ok || !a.IsComplete() {
		return 0
	}
	unused := a.AllocatedSeconds - a.UsedSeconds
	if unused < 0 {
		return 0
	}
	return unused
}

// CreateChildBudget derives a new budget for agentID whose total is
// that agent's current remaining allocation, compounding the reserve
// ratio one level deeper exactly as the parent does.
func (b *TimeoutBudget) CreateChildBudget(agentID string, opts ...func(*TimeoutBudget)) (*TimeoutBudget, error) {
	a, ok := b.allocations[agentID]
	if !ok {
		return nil, fmt.Errorf("timeout budget: no allocation for agent %q", agentID)
	}
	remaining := a.Remaining(time.Now())
	child := NewTimeoutBudget(remaining,
		append([]func(*TimeoutBudget){
			WithReserveRatio(b.ReserveRatio),
			WithMinChildTimeout(b.MinChildTimeout / 2),
			WithPolicy(b.DefaultPolicy),
		}, opts...)...,
	)
	return child, nil
}

// Summary is a point-in-time snapshot suitable for logging or a status
// CLI command.
type Summary struct {
	TotalSeconds    float64            `json:"total_seconds"`
	UsableSeconds   float64            `json:"usable_seconds"`
	ReserveSeconds  float64            `json:"reserve_seconds"`
	ElapsedSeconds  float64            `json:"elapsed_seconds"`
	RemainingSeconds float64           `json:"remaining_seconds"`
	Allocated       float64            `json:"allocated_total"`
	Unallocated     float64            `json:"unallocated"`
	Agents          map[string]float64 `json:"agents"`
}

func (b *TimeoutBudget) GetSummary() Summary {
	now := time.Now()
	agents := make(map[string]float64, len(b.allocations))
	for id, a := range b.allocations {
		agents[id] = a.Remaining(now)
	}
	return Summary{
		TotalSeconds:     b.TotalSeconds,
		UsableSeconds:    b.UsableSeconds(),
		ReserveSeconds:   b.ReserveSeconds(),
		ElapsedSeconds:   b.Elapsed(now),
		RemainingSeconds: b.Remaining(now),
		Allocated:        b.AllocatedTotal(),
		Unallocated:      b.Unallocated(),
		Agents:           agents,
	}
}

func (b *TimeoutBudget) GetAgentSummary(agentID string) (TimeAllocation, bool) {
	a, ok := b.allocations[agentID]
	if !ok {
		return TimeAllocation{}, false
	}
	return *a, true
}
