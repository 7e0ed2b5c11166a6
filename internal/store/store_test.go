package store

import (
	"context"
	"errors"
	"testing"

	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/arnold/stakegoals-api/internal/verification"
	"github.com/google/uuid"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open("file::memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db)
}

func seedGoal(t *testing.T, s *Store, commitment int64) *models.Goal {
	t.Helper()
	target := commitment
	goal := &models.Goal{
		UserID:           uuid.New(),
		Title:            "Run a marathon",
		CommitmentAmount: commitment,
		TargetAmount:     &target,
		Status:           models.GoalActive,
	}
	if err := s.db.Create(goal).Error; err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return goal
}

func TestGetMissingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetGoal(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("goal: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTask(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("task: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetSubmission(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("submission: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTask(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestTasksScopedToGoal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedGoal(t, s, 100)
	b := seedGoal(t, s, 50)

	for _, g := range []*models.Goal{a, a, b} {
		if err := s.CreateTask(ctx, &models.Task{GoalID: g.ID, Title: "task", Difficulty: models.DifficultyEasy}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if err := s.SetTaskRewards(ctx, a.ID, 50); err != nil {
		t.Fatalf("set rewards: %v", err)
	}

	tasks, err := s.ListTasks(ctx, a.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.RewardAmount != 50 {
			t.Fatalf("expected reward 50, got %d", task.RewardAmount)
		}
	}

	other, _ := s.ListTasks(ctx, b.ID)
	if len(other) != 1 || other[0].RewardAmount != 0 {
		t.Fatalf("other goal's tasks were touched: %+v", other)
	}

	if err := s.DeleteTasks(ctx, a.ID); err != nil {
		t.Fatalf("delete tasks: %v", err)
	}
	if tasks, _ := s.ListTasks(ctx, a.ID); len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestMilestonesUpsertAndReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := seedGoal(t, s, 100)

	m := &models.Milestone{GoalID: g.ID, Threshold: 25, RewardAmount: 25}
	if err := s.SaveMilestone(ctx, m); err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	m.Achieved = true
	if err := s.SaveMilestone(ctx, m); err != nil {
		t.Fatalf("update milestone: %v", err)
	}
	ms, err := s.ListMilestones(ctx, g.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ms) != 1 || !ms[0].Achieved {
		t.Fatalf("unexpected milestones %+v", ms)
	}

	if err := s.DeleteMilestones(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// the unique (goal, threshold) slot is free again
	if err := s.SaveMilestone(ctx, &models.Milestone{GoalID: g.ID, Threshold: 25}); err != nil {
		t.Fatalf("recreate milestone: %v", err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := seedGoal(t, s, 100)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx lifecycle.Store) error {
		goal, err := tx.GetGoal(ctx, g.ID)
		if err != nil {
			return err
		}
		goal.CurrentAmount = 40
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return err
		}
		if err := tx.CreateTask(ctx, &models.Task{GoalID: g.ID, Title: "x", Difficulty: models.DifficultyEasy}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	goal, _ := s.GetGoal(ctx, g.ID)
	if goal.CurrentAmount != 0 {
		t.Fatalf("expected rollback of current amount, got %d", goal.CurrentAmount)
	}
	if tasks, _ := s.ListTasks(ctx, g.ID); len(tasks) != 0 {
		t.Fatalf("expected rollback of task, got %d", len(tasks))
	}
}

func TestCoordinatorOnGorm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := seedGoal(t, s, 100)
	coord := lifecycle.New(s, nil, lifecycle.Options{})

	tasks, err := coord.AddTasks(ctx, g.ID, g.UserID, []lifecycle.NewTask{
		{Title: "10k run"}, {Title: "half marathon"}, {Title: "long run"}, {Title: "taper"},
	}, models.TaskSourceManual)
	if err != nil {
		t.Fatalf("AddTasks: %v", err)
	}
	if err := coord.DeleteTask(ctx, g.ID, g.UserID, tasks[3].ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	left, _ := s.ListTasks(ctx, g.ID)
	for _, task := range left {
		if task.RewardAmount != 33 {
			t.Fatalf("expected 33 after delete, got %d", task.RewardAmount)
		}
	}

	out, err := coord.SubmitProof(ctx, g.ID, g.UserID, left[0].ID, verification.Proof{
		Type:          verification.ProofGithub,
		GithubRepo:    "https://github.com/me/training-log",
		GithubCommits: "implemented the weekly plan and fixed pacing notes",
	})
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	if !out.Result.Verified || out.Reward != 33 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	goal, _ := s.GetGoal(ctx, g.ID)
	if goal.CurrentAmount != 33 || goal.RewardsPaid != 33 {
		t.Fatalf("unexpected goal balances %+v", goal)
	}
	left, _ = s.ListTasks(ctx, g.ID)
	if len(left) != 2 {
		t.Fatalf("expected 2 open tasks, got %d", len(left))
	}
	for _, task := range left {
		// (100 - 33) / 2 rounded half up
		if task.RewardAmount != 34 {
			t.Fatalf("expected 34, got %d", task.RewardAmount)
		}
	}

	ms, _ := s.ListMilestones(ctx, g.ID)
	if len(ms) != 4 || !ms[0].Achieved || ms[1].Achieved {
		t.Fatalf("unexpected milestones %+v", ms)
	}

	entries, err := s.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected credit and bonus entries, got %+v", entries)
	}

	subs, err := s.ListSubmissions(ctx, models.SubmissionApproved)
	if err != nil || len(subs) != 1 || subs[0].TaskID != out.Submission.TaskID {
		t.Fatalf("unexpected submissions %+v (%v)", subs, err)
	}
}
