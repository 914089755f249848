package executor

// Preset factories mirroring the original implementation's
// TimeoutPresets: named starting points for common mission shapes,
// expressed in seconds for NewTimeoutBudget.

func QuickTaskBudget() *TimeoutBudget {
	return NewTimeoutBudget(5*60, WithPolicy(PolicyEqual))
}

func StandardTaskBudget() *TimeoutBudget {
	return NewTimeoutBudget(20*60, WithPolicy(PolicyEqual))
}

func ComplexTaskBudget() *TimeoutBudget {
	return NewTimeoutBudget(45*60, WithPolicy(PolicyWeighted))
}

func ExtendedTaskBudget() *TimeoutBudget {
	return NewTimeoutBudget(90*60, WithPolicy(PolicyWeighted))
}

func MultiAgentParallelBudget(agentCount int) *TimeoutBudget {
	perAgentMinutes := 15.0
	total := perAgentMinutes * 60 * float64(agentCount)
	return NewTimeoutBudget(total, WithPolicy(PolicyParallel))
}

// HierarchicalBudget sizes a root budget from a number of
// minutes-per-agent. Total is perAgentMinutes inflated by 1.3x for
// sub-agent spawning overhead, then divided by 0.9 to offset the
// standard 10% reserve, so UsableSeconds comes to 1.3x perAgentMinutes.
// Under the EQUAL policy that usable time is split evenly among the
// children allocated from it.
func HierarchicalBudget(perAgentMinutes float64) *TimeoutBudget {
	total := perAgentMinutes * 60 * 1.3
	total = total / 0.9
	return NewTimeoutBudget(total, WithPolicy(PolicyEqual))
}
