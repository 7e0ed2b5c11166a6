// Package milestones tracks which progress thresholds a goal has crossed.
package milestones

import (
	"sort"
	"time"

	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/google/uuid"
)

// Thresholds are the progress percentages that unlock a milestone.
var Thresholds = []int{25, 50, 75, 100}

// NearWindow is how many percentage points below a threshold counts as near.
const NearWindow = 10

// Status is the evaluated state of one threshold.
type Status struct {
	Threshold    int   `json:"threshold"`
	Achieved     bool  `json:"achieved"`
	Near         bool  `json:"near"`
	RewardAmount int64 `json:"rewardAmount"`
}

// Progress returns current as a percentage of target, or 0 without a target.
func Progress(current, target int64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(current) / float64(target) * 100
}

// Bonus is the one-time amount unlocked per milestone: a quarter of the
// commitment, rounded half up.
func Bonus(commitment int64) int64 {
	if commitment <= 0 {
		return 0
	}
	return (commitment + 2) / 4
}

// Evaluate reports every threshold for the given amounts. Comparisons are
// done in integer space so 74.999...% never rounds into 75%.
func Evaluate(current, target, commitment int64) []Status {
	bonus := Bonus(commitment)
	out := make([]Status, 0, len(Thresholds))
	for _, th := range Thresholds {
		s := Status{Threshold: th, RewardAmount: bonus}
		if target > 0 {
			s.Achieved = current*100 >= int64(th)*target
			s.Near = current*100 >= int64(th-NearWindow)*target
		}
		out = append(out, s)
	}
	return out
}

// Achieved returns the thresholds marked achieved in statuses.
func Achieved(statuses []Status) []int {
	var out []int
	for _, s := range statuses {
		if s.Achieved {
			out = append(out, s.Threshold)
		}
	}
	return out
}

// Merge folds a fresh evaluation into the milestones stored for goalID.
// A stored milestone that is already achieved stays achieved. Thresholds that
// flip to achieved get AchievedAt = now and are returned in newly, in
// ascending order, so the caller can emit one bonus event each.
func Merge(goalID uuid.UUID, stored []models.Milestone, eval []Status, now time.Time) (updated, newly []models.Milestone) {
	byThreshold := make(map[int]models.Milestone, len(stored))
	for _, m := range stored {
		byThreshold[m.Threshold] = m
	}

	for _, s := range eval {
		m, ok := byThreshold[s.Threshold]
		if !ok {
			m = models.Milestone{GoalID: goalID, Threshold: s.Threshold}
		}
		if !m.Achieved {
			m.RewardAmount = s.RewardAmount
			if s.Achieved {
				at := now
				m.Achieved = true
				m.AchievedAt = &at
				newly = append(newly, m)
			}
		}
		updated = append(updated, m)
	}

	sort.Slice(updated, func(i, j int) bool { return updated[i].Threshold < updated[j].Threshold })
	sort.Slice(newly, func(i, j int) bool { return newly[i].Threshold < newly[j].Threshold })
	return updated, newly
}
