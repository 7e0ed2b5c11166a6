// Package rewards splits a goal's committed stake across its open tasks.
package rewards

import "fmt"

// FallbackReward is the per-task reward used before any stake is configured.
const FallbackReward int64 = 25

// Policy selects which pool a redistribution pass divides.
type Policy string

const (
	// PolicyRemaining divides the commitment minus rewards already paid out.
	PolicyRemaining Policy = "remaining"
	// PolicyTotal divides the full commitment on every pass. Remaining tasks
	// can then be worth more in aggregate than what is left of the stake.
	PolicyTotal Policy = "total"
)

// ParsePolicy maps a config value to a Policy. Empty means PolicyRemaining.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRemaining:
		return PolicyRemaining, nil
	case PolicyTotal:
		return PolicyTotal, nil
	}
	return "", fmt.Errorf("unknown redistribution policy %q", s)
}

// Allocate returns the per-task reward for taskCount tasks sharing
// commitment, rounded half up. The sum over all tasks may differ from
// commitment by less than taskCount units; that residue is not corrected.
func Allocate(taskCount int, commitment int64) int64 {
	if taskCount <= 0 || commitment <= 0 {
		return FallbackReward
	}
	n := int64(taskCount)
	return (2*commitment + n) / (2 * n)
}

// Redistribute returns the reward every open task gets after the task set
// changed. paid is the sum of rewards already credited for the goal.
func Redistribute(policy Policy, taskCount int, commitment, paid int64) int64 {
	if policy == PolicyTotal || commitment <= 0 {
		return Allocate(taskCount, commitment)
	}
	pool := commitment - paid
	if pool <= 0 {
		// stake fully paid out; new tasks carry no reward
		return 0
	}
	return Allocate(taskCount, pool)
}

// Residue is the signed difference between the pool and what perTask over
// taskCount tasks adds up to.
func Residue(taskCount int, perTask, pool int64) int64 {
	return pool - perTask*int64(taskCount)
}
