// Package lifecycle moves tasks through proof review and keeps a goal's
// balance, milestones and task rewards consistent while it does.
//
// A task is open until proof is submitted, pending review while the proof is
// scored, and then either approved (reward credited, task removed) or
// rejected (task stays open for another attempt).
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/arnold/stakegoals-api/internal/milestones"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/arnold/stakegoals-api/internal/rewards"
	"github.com/arnold/stakegoals-api/internal/verification"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "stakegoals/lifecycle"

// Options tunes a Coordinator. Zero values pick the defaults.
type Options struct {
	Policy rewards.Policy
	Engine *verification.Engine
	Now    func() time.Time
}

type Coordinator struct {
	store    Store
	notifier Notifier
	engine   *verification.Engine
	policy   rewards.Policy
	locks    *KeyedMutex
	now      func() time.Time
}

func New(store Store, notifier Notifier, opts Options) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if opts.Policy == "" {
		opts.Policy = rewards.PolicyRemaining
	}
	if opts.Engine == nil {
		opts.Engine = verification.NewEngine(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		engine:   opts.Engine,
		policy:   opts.Policy,
		locks:    NewKeyedMutex(),
		now:      opts.Now,
	}
}

// NewTask is the input for AddTasks.
type NewTask struct {
	Title       string
	Description *string
	Difficulty  string
}

// Outcome is the result of a proof submission.
type Outcome struct {
	Result     verification.Result `json:"result"`
	Submission *models.Submission  `json:"submission"`
	Goal       *models.Goal        `json:"goal"`
	// Reward is the amount credited, zero when the proof was rejected.
	Reward int64 `json:"reward"`
	// Milestones lists thresholds first crossed by this submission.
	Milestones []models.Milestone `json:"milestones"`
	// RemainingTasks and TaskReward describe the redistributed task set.
	RemainingTasks int   `json:"remainingTasks"`
	TaskReward     int64 `json:"taskReward"`
}

// Snapshot is a read-only view of a goal for dashboards.
type Snapshot struct {
	Goal          *models.Goal        `json:"goal"`
	Tasks         []models.Task       `json:"tasks"`
	Progress      float64             `json:"progress"`
	Milestones    []milestones.Status `json:"milestones"`
	Achieved      []models.Milestone  `json:"achievedMilestones"`
	RemainingPool int64               `json:"remainingPool"`
}

func (c *Coordinator) startSpan(ctx context.Context, name string, goalID uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(
		attribute.String("goal.id", goalID.String()),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// loadGoal fetches a goal and checks ownership. A nil userID skips the
// ownership check for administrative callers.
func loadGoal(ctx context.Context, s Store, goalID, userID uuid.UUID) (*models.Goal, error) {
	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return nil, storeErr("Goal not found", err)
	}
	if userID != uuid.Nil && goal.UserID != userID {
		return nil, notFound("Goal not found")
	}
	return goal, nil
}

func loadTask(ctx context.Context, s Store, goalID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, storeErr("Task not found", err)
	}
	if task.GoalID != goalID {
		return nil, notFound("Task not found")
	}
	return task, nil
}

func editable(goal *models.Goal) error {
	if goal.Status == models.GoalCompleted || goal.Status == models.GoalFailed {
		return conflict("Goal closed", fmt.Sprintf("goal is %s and its tasks can no longer change", goal.Status))
	}
	return nil
}

// redistribute overwrites every remaining task's reward. It reads the task
// list through s so it sees writes made earlier in the same transaction.
func (c *Coordinator) redistribute(ctx context.Context, s Store, goal *models.Goal) (int, int64, error) {
	tasks, err := s.ListTasks(ctx, goal.ID)
	if err != nil {
		return 0, 0, err
	}
	if len(tasks) == 0 {
		return 0, 0, nil
	}
	per := rewards.Redistribute(c.policy, len(tasks), goal.CommitmentAmount, goal.RewardsPaid)
	if err := s.SetTaskRewards(ctx, goal.ID, per); err != nil {
		return 0, 0, err
	}
	return len(tasks), per, nil
}

// LockGoal serializes a caller's balance-dependent writes with the
// coordinator's own mutations of the goal. Call the returned func to release.
func (c *Coordinator) LockGoal(goalID uuid.UUID) func() {
	return c.locks.Lock(goalID)
}

// pool is the amount a redistribution pass divides under the configured policy.
func (c *Coordinator) pool(goal *models.Goal) int64 {
	if c.policy == rewards.PolicyTotal {
		return goal.CommitmentAmount
	}
	return goal.CommitmentAmount - goal.RewardsPaid
}

// AddTasks creates tasks under a goal and redistributes rewards across the
// whole task set. source is models.TaskSourceManual or models.TaskSourceAI.
func (c *Coordinator) AddTasks(ctx context.Context, goalID, userID uuid.UUID, in []NewTask, source string) ([]models.Task, error) {
	ctx, span := c.startSpan(ctx, "lifecycle.add_tasks", goalID)
	defer span.End()

	if len(in) == 0 {
		return nil, fail(span, invalid("No tasks", "at least one task is required", nil))
	}
	if source == "" {
		source = models.TaskSourceManual
	}
	for i := range in {
		in[i].Title = strings.TrimSpace(in[i].Title)
		if in[i].Title == "" {
			return nil, fail(span, invalid("Invalid task", "title is required", nil))
		}
		if in[i].Difficulty == "" {
			in[i].Difficulty = models.DifficultyMedium
		}
		if !models.ValidDifficulty(in[i].Difficulty) {
			return nil, fail(span, invalid("Invalid task", "difficulty must be easy, medium or hard", nil))
		}
	}

	unlock := c.locks.Lock(goalID)
	defer unlock()

	var (
		goal  *models.Goal
		tasks []models.Task
		per   int64
	)
	err := c.store.Transaction(ctx, func(tx Store) error {
		var err error
		if goal, err = loadGoal(ctx, tx, goalID, userID); err != nil {
			return err
		}
		if err := editable(goal); err != nil {
			return err
		}
		for _, nt := range in {
			t := models.Task{
				GoalID:      goalID,
				Title:       nt.Title,
				Description: nt.Description,
				Difficulty:  nt.Difficulty,
				Source:      source,
			}
			if err := tx.CreateTask(ctx, &t); err != nil {
				return storeErr("Failed to add task", err)
			}
		}
		if _, per, err = c.redistribute(ctx, tx, goal); err != nil {
			return storeErr("Failed to redistribute rewards", err)
		}
		if tasks, err = tx.ListTasks(ctx, goalID); err != nil {
			return storeErr("Failed to load tasks", err)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	span.AddEvent("rewards.redistributed", trace.WithAttributes(
		attribute.Int("task.count", len(tasks)),
		attribute.Int64("task.reward", per),
		attribute.Int64("reward.residue", rewards.Residue(len(tasks), per, c.pool(goal))),
	))

	n := Notice{UserID: goal.UserID, GoalID: goalID, Metadata: map[string]interface{}{"goalId": goalID.String()}}
	switch {
	case source == models.TaskSourceAI:
		n.Type = models.NotifyTasksGenerated
		n.Title = "AI tasks generated"
		n.Body = fmt.Sprintf("%d tasks generated. Each task is now worth %d.", len(in), per)
	case len(in) == 1:
		n.Type = models.NotifyTaskAdded
		n.Title = "Task added"
		n.Body = fmt.Sprintf("%q added. Each task is now worth %d.", in[0].Title, per)
	default:
		n.Type = models.NotifyTaskAdded
		n.Title = "Tasks added"
		n.Body = fmt.Sprintf("%d tasks added. Each task is now worth %d.", len(in), per)
	}
	c.notifier.Notify(ctx, n)

	return tasks, nil
}

// DeleteTask removes an open task. Its share of the stake goes back into the
// pool for the remaining tasks.
func (c *Coordinator) DeleteTask(ctx context.Context, goalID, userID, taskID uuid.UUID) error {
	ctx, span := c.startSpan(ctx, "lifecycle.delete_task", goalID)
	defer span.End()
	span.SetAttributes(attribute.String("task.id", taskID.String()))

	unlock := c.locks.Lock(goalID)
	defer unlock()

	var (
		goal      *models.Goal
		task      *models.Task
		remaining int
		per       int64
	)
	err := c.store.Transaction(ctx, func(tx Store) error {
		var err error
		if goal, err = loadGoal(ctx, tx, goalID, userID); err != nil {
			return err
		}
		if err := editable(goal); err != nil {
			return err
		}
		if task, err = loadTask(ctx, tx, goalID, taskID); err != nil {
			return err
		}
		if err := tx.DeleteTask(ctx, taskID); err != nil {
			return storeErr("Failed to delete task", err)
		}
		if remaining, per, err = c.redistribute(ctx, tx, goal); err != nil {
			return storeErr("Failed to redistribute rewards", err)
		}
		return nil
	})
	if err != nil {
		return fail(span, err)
	}
	span.AddEvent("task.removed")

	body := fmt.Sprintf("%q was deleted.", task.Title)
	if remaining > 0 {
		body = fmt.Sprintf("%q was deleted. %d remaining tasks are now worth %d each.", task.Title, remaining, per)
	}
	c.notifier.Notify(ctx, Notice{
		UserID:   goal.UserID,
		GoalID:   goalID,
		Type:     models.NotifyTaskDeleted,
		Title:    "Task deleted",
		Body:     body,
		Metadata: map[string]interface{}{"goalId": goalID.String(), "taskId": taskID.String()},
	})
	return nil
}

// ClearTasks deletes every task of a goal and resets its earnings and
// milestones to zero. It cannot be undone; callers confirm before invoking.
func (c *Coordinator) ClearTasks(ctx context.Context, goalID, userID uuid.UUID) (*models.Goal, error) {
	ctx, span := c.startSpan(ctx, "lifecycle.clear_tasks", goalID)
	defer span.End()

	unlock := c.locks.Lock(goalID)
	defer unlock()

	var goal *models.Goal
	err := c.store.Transaction(ctx, func(tx Store) error {
		var err error
		if goal, err = loadGoal(ctx, tx, goalID, userID); err != nil {
			return err
		}
		if err := editable(goal); err != nil {
			return err
		}
		previous := goal.CurrentAmount
		if err := tx.DeleteTasks(ctx, goalID); err != nil {
			return storeErr("Failed to clear tasks", err)
		}
		if err := tx.DeleteMilestones(ctx, goalID); err != nil {
			return storeErr("Failed to reset milestones", err)
		}
		goal.CurrentAmount = 0
		goal.RewardsPaid = 0
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return storeErr("Failed to reset goal", err)
		}
		if err := tx.AppendLedger(ctx, &models.LedgerEntry{
			GoalID:  goalID,
			UserID:  goal.UserID,
			Type:    models.LedgerReset,
			Amount:  -previous,
			Balance: 0,
		}); err != nil {
			return storeErr("Failed to record reset", err)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	span.AddEvent("tasks.cleared")

	c.notifier.Notify(ctx, Notice{
		UserID:   goal.UserID,
		GoalID:   goalID,
		Type:     models.NotifyTasksCleared,
		Title:    "Tasks cleared",
		Body:     "All tasks were removed and your progress was reset.",
		Metadata: map[string]interface{}{"goalId": goalID.String()},
	})
	return goal, nil
}

// SubmitProof scores proof for a task. A verified proof credits the task's
// reward, removes the task, unlocks milestones and redistributes the
// remaining pool in one transaction. A rejected proof changes no balances.
func (c *Coordinator) SubmitProof(ctx context.Context, goalID, userID, taskID uuid.UUID, proof verification.Proof) (*Outcome, error) {
	ctx, span := c.startSpan(ctx, "lifecycle.submit_proof", goalID)
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", taskID.String()),
		attribute.String("proof.type", string(proof.Type)),
	)

	if err := proof.Validate(); err != nil {
		return nil, fail(span, invalid("Missing proof details", err.Error(), err))
	}

	unlock := c.locks.Lock(goalID)
	defer unlock()

	goal, err := loadGoal(ctx, c.store, goalID, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	if goal.Status != models.GoalActive {
		return nil, fail(span, conflict("Goal not active", "proof can only be submitted for an active goal"))
	}
	task, err := loadTask(ctx, c.store, goalID, taskID)
	if err != nil {
		return nil, fail(span, err)
	}

	span.AddEvent("proof.pending_review")
	res, err := c.engine.Verify(ctx, task.Title, task.Difficulty, proof)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("proof.confidence", res.Confidence))

	sub := newSubmission(goal, task, proof, res)
	if !res.Verified {
		sub.Status = models.SubmissionRejected
		if err := c.store.CreateSubmission(ctx, sub); err != nil {
			return nil, fail(span, storeErr("Failed to record submission", err))
		}
		span.AddEvent("proof.rejected")
		c.notifyRejected(ctx, goal, task, res)
		return &Outcome{Result: res, Submission: sub, Goal: goal}, nil
	}

	sub.Status = models.SubmissionApproved
	out, err := c.complete(ctx, span, goalID, taskID, sub, true)
	if err != nil {
		return nil, fail(span, err)
	}
	out.Result = res
	return out, nil
}

// OverrideSubmission approves a rejected submission on an administrator's
// word and runs the same completion sequence as a verified proof.
func (c *Coordinator) OverrideSubmission(ctx context.Context, submissionID uuid.UUID) (*Outcome, error) {
	sub, err := c.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, storeErr("Submission not found", err)
	}

	ctx, span := c.startSpan(ctx, "lifecycle.override_submission", sub.GoalID)
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", submissionID.String()))

	if sub.Status != models.SubmissionRejected {
		return nil, fail(span, conflict("Already reviewed", "only rejected submissions can be approved"))
	}

	unlock := c.locks.Lock(sub.GoalID)
	defer unlock()

	goal, err := loadGoal(ctx, c.store, sub.GoalID, uuid.Nil)
	if err != nil {
		return nil, fail(span, err)
	}
	if goal.Status != models.GoalActive {
		return nil, fail(span, conflict("Goal not active", "submissions can only be approved for an active goal"))
	}
	if _, err := loadTask(ctx, c.store, sub.GoalID, sub.TaskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fail(span, conflict("Task closed", "the task for this submission is no longer open"))
		}
		return nil, fail(span, err)
	}

	now := c.now()
	sub.Status = models.SubmissionOverridden
	sub.ReviewedAt = &now
	out, err := c.complete(ctx, span, sub.GoalID, sub.TaskID, sub, false)
	if err != nil {
		return nil, fail(span, err)
	}
	out.Result = verification.Result{
		Verified:   true,
		Confidence: sub.Confidence,
		Feedback:   "Approved after manual review.",
	}
	return out, nil
}

// complete runs credit, delete, milestone and redistribution writes as one
// transaction. Goal and task are re-read inside it.
func (c *Coordinator) complete(ctx context.Context, span trace.Span, goalID, taskID uuid.UUID, sub *models.Submission, create bool) (*Outcome, error) {
	out := &Outcome{Submission: sub}
	now := c.now()

	err := c.store.Transaction(ctx, func(tx Store) error {
		goal, err := loadGoal(ctx, tx, goalID, uuid.Nil)
		if err != nil {
			return err
		}
		task, err := loadTask(ctx, tx, goalID, taskID)
		if err != nil {
			return err
		}

		reward := task.RewardAmount
		goal.CurrentAmount += reward
		goal.RewardsPaid += reward
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return storeErr("Failed to credit reward", err)
		}
		if err := tx.AppendLedger(ctx, &models.LedgerEntry{
			GoalID:   goalID,
			UserID:   goal.UserID,
			Type:     models.LedgerRewardCredit,
			Amount:   reward,
			Balance:  goal.CurrentAmount,
			TargetID: &task.ID,
		}); err != nil {
			return storeErr("Failed to record reward", err)
		}

		if err := tx.DeleteTask(ctx, taskID); err != nil {
			return storeErr("Failed to remove completed task", err)
		}

		stored, err := tx.ListMilestones(ctx, goalID)
		if err != nil {
			return storeErr("Failed to load milestones", err)
		}
		eval := milestones.Evaluate(goal.CurrentAmount, goal.Target(), goal.CommitmentAmount)
		updated, newly := milestones.Merge(goalID, stored, eval, now)
		for i := range updated {
			if err := tx.SaveMilestone(ctx, &updated[i]); err != nil {
				return storeErr("Failed to save milestone", err)
			}
		}
		for i := range newly {
			for j := range updated {
				if updated[j].Threshold == newly[i].Threshold {
					newly[i] = updated[j]
				}
			}
			if err := tx.AppendLedger(ctx, &models.LedgerEntry{
				GoalID:   goalID,
				UserID:   goal.UserID,
				Type:     models.LedgerMilestoneBonus,
				Amount:   newly[i].RewardAmount,
				Balance:  goal.CurrentAmount,
				TargetID: &newly[i].ID,
			}); err != nil {
				return storeErr("Failed to record milestone bonus", err)
			}
		}

		remaining, per, err := c.redistribute(ctx, tx, goal)
		if err != nil {
			return storeErr("Failed to redistribute rewards", err)
		}

		sub.RewardAmount = reward
		if create {
			err = tx.CreateSubmission(ctx, sub)
		} else {
			err = tx.SaveSubmission(ctx, sub)
		}
		if err != nil {
			return storeErr("Failed to record submission", err)
		}

		out.Goal = goal
		out.Reward = reward
		out.Milestones = newly
		out.RemainingTasks = remaining
		out.TaskReward = per
		return nil
	})
	if err != nil {
		log.Printf("lifecycle: completing task %s on goal %s failed, nothing was applied: %v", taskID, goalID, err)
		return nil, err
	}

	span.AddEvent("reward.credited", trace.WithAttributes(attribute.Int64("reward", out.Reward)))
	span.AddEvent("task.removed")
	for _, m := range out.Milestones {
		span.AddEvent("milestone.achieved", trace.WithAttributes(attribute.Int("threshold", m.Threshold)))
	}
	span.AddEvent("rewards.redistributed", trace.WithAttributes(
		attribute.Int("task.count", out.RemainingTasks),
		attribute.Int64("task.reward", out.TaskReward),
	))

	c.notifier.Notify(ctx, Notice{
		UserID: out.Goal.UserID,
		GoalID: goalID,
		Type:   models.NotifyProofVerified,
		Title:  "Proof verified",
		Body:   fmt.Sprintf("%q is complete. %d has been added to your balance.", sub.TaskTitle, out.Reward),
		Metadata: map[string]interface{}{
			"goalId": goalID.String(),
			"taskId": taskID.String(),
			"reward": out.Reward,
		},
	})
	for _, m := range out.Milestones {
		c.notifier.Notify(ctx, Notice{
			UserID: out.Goal.UserID,
			GoalID: goalID,
			Type:   models.NotifyMilestoneAchieved,
			Title:  "Milestone achieved",
			Body:   fmt.Sprintf("You reached %d%% of your target and unlocked a bonus of %d.", m.Threshold, m.RewardAmount),
			Metadata: map[string]interface{}{
				"goalId":    goalID.String(),
				"threshold": m.Threshold,
				"bonus":     m.RewardAmount,
			},
		})
	}
	return out, nil
}

func (c *Coordinator) notifyRejected(ctx context.Context, goal *models.Goal, task *models.Task, res verification.Result) {
	body := res.Feedback
	if len(res.Suggestions) > 0 {
		body += " " + strings.Join(res.Suggestions, ". ")
		if !strings.HasSuffix(body, ".") {
			body += "."
		}
	}
	c.notifier.Notify(ctx, Notice{
		UserID: goal.UserID,
		GoalID: goal.ID,
		Type:   models.NotifyProofRejected,
		Title:  "Proof rejected",
		Body:   body,
		Metadata: map[string]interface{}{
			"goalId":      goal.ID.String(),
			"taskId":      task.ID.String(),
			"confidence":  res.Confidence,
			"suggestions": res.Suggestions,
		},
	})
}

func newSubmission(goal *models.Goal, task *models.Task, p verification.Proof, res verification.Result) *models.Submission {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	sub := &models.Submission{
		TaskID:         task.ID,
		GoalID:         goal.ID,
		UserID:         goal.UserID,
		TaskTitle:      task.Title,
		TaskDifficulty: task.Difficulty,
		ProofType:      string(p.Type),
		GithubRepo:     opt(p.GithubRepo),
		GithubCommits:  opt(p.GithubCommits),
		CoursePlatform: opt(p.CoursePlatform),
		CourseProgress: opt(p.CourseProgress),
		Description:    opt(p.Description),
		FileURL:        opt(p.FileURL),
		Verified:       res.Verified,
		Confidence:     res.Confidence,
		Feedback:       res.Feedback,
	}
	if len(res.Suggestions) > 0 {
		if b, err := json.Marshal(res.Suggestions); err == nil {
			sub.Suggestions = opt(string(b))
		}
	}
	return sub
}

// SettleGoal resolves an active goal once it can no longer change: completed
// when every task has been paid out, failed when the deadline has passed
// with tasks still open. It reports whether the status changed.
func (c *Coordinator) SettleGoal(ctx context.Context, goalID uuid.UUID) (*models.Goal, bool, error) {
	ctx, span := c.startSpan(ctx, "lifecycle.settle_goal", goalID)
	defer span.End()

	unlock := c.locks.Lock(goalID)
	defer unlock()

	goal, err := loadGoal(ctx, c.store, goalID, uuid.Nil)
	if err != nil {
		return nil, false, fail(span, err)
	}
	if goal.Status != models.GoalActive {
		return nil, false, fail(span, conflict("Goal not active", fmt.Sprintf("goal is %s", goal.Status)))
	}
	tasks, err := c.store.ListTasks(ctx, goalID)
	if err != nil {
		return nil, false, fail(span, storeErr("Failed to load tasks", err))
	}

	now := c.now()
	switch {
	case len(tasks) == 0 && goal.RewardsPaid > 0:
		goal.Status = models.GoalCompleted
		goal.CompletedAt = &now
	case goal.Deadline != nil && now.After(*goal.Deadline):
		goal.Status = models.GoalFailed
	default:
		return goal, false, nil
	}
	if err := c.store.SaveGoal(ctx, goal); err != nil {
		return nil, false, fail(span, storeErr("Failed to settle goal", err))
	}
	span.AddEvent("goal." + goal.Status)

	title := "Goal completed"
	body := fmt.Sprintf("Congratulations! %q is complete with %d earned.", goal.Title, goal.CurrentAmount)
	if goal.Status == models.GoalFailed {
		title = "Goal failed"
		body = fmt.Sprintf("The deadline for %q passed with %d tasks still open.", goal.Title, len(tasks))
	}
	c.notifier.Notify(ctx, Notice{
		UserID:   goal.UserID,
		GoalID:   goalID,
		Type:     models.NotifyGoalSettled,
		Title:    title,
		Body:     body,
		Metadata: map[string]interface{}{"goalId": goalID.String(), "status": goal.Status},
	})
	return goal, true, nil
}

// Snapshot returns a goal with its open tasks and milestone progress.
func (c *Coordinator) Snapshot(ctx context.Context, goalID, userID uuid.UUID) (*Snapshot, error) {
	goal, err := loadGoal(ctx, c.store, goalID, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := c.store.ListTasks(ctx, goalID)
	if err != nil {
		return nil, storeErr("Failed to load tasks", err)
	}
	stored, err := c.store.ListMilestones(ctx, goalID)
	if err != nil {
		return nil, storeErr("Failed to load milestones", err)
	}

	target := goal.Target()
	statuses := milestones.Evaluate(goal.CurrentAmount, target, goal.CommitmentAmount)
	// stored achievements win over a fresh evaluation
	for i := range statuses {
		for _, m := range stored {
			if m.Threshold == statuses[i].Threshold && m.Achieved {
				statuses[i].Achieved = true
				statuses[i].RewardAmount = m.RewardAmount
			}
		}
	}
	var achieved []models.Milestone
	for _, m := range stored {
		if m.Achieved {
			achieved = append(achieved, m)
		}
	}

	pool := goal.CommitmentAmount - goal.RewardsPaid
	if pool < 0 {
		pool = 0
	}
	return &Snapshot{
		Goal:          goal,
		Tasks:         tasks,
		Progress:      milestones.Progress(goal.CurrentAmount, target),
		Milestones:    statuses,
		Achieved:      achieved,
		RemainingPool: pool,
	}, nil
}
