// Package store implements the lifecycle record store on gorm.
package store

import (
	"context"
	"errors"

	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned for lookups of missing records.
var ErrNotFound = lifecycle.ErrNotFound

var _ lifecycle.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// deleted reports a delete that matched no row as not found.
func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	if err := s.conn(ctx).First(&goal, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &goal, nil
}

func (s *Store) SaveGoal(ctx context.Context, goal *models.Goal) error {
	return s.conn(ctx).Save(goal).Error
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.conn(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (s *Store) ListTasks(ctx context.Context, goalID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := s.conn(ctx).Where("goal_id = ?", goalID).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	return s.conn(ctx).Create(task).Error
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return deleted(s.conn(ctx).Where("id = ?", id).Delete(&models.Task{}))
}

func (s *Store) DeleteTasks(ctx context.Context, goalID uuid.UUID) error {
	return s.conn(ctx).Where("goal_id = ?", goalID).Delete(&models.Task{}).Error
}

func (s *Store) SetTaskRewards(ctx context.Context, goalID uuid.UUID, reward int64) error {
	return s.conn(ctx).Model(&models.Task{}).
		Where("goal_id = ?", goalID).
		Update("reward_amount", reward).Error
}

func (s *Store) ListMilestones(ctx context.Context, goalID uuid.UUID) ([]models.Milestone, error) {
	var ms []models.Milestone
	err := s.conn(ctx).Where("goal_id = ?", goalID).Order("threshold ASC").Find(&ms).Error
	return ms, err
}

// SaveMilestone inserts a new milestone or updates an existing one. Rows are
// hard-deleted on reset so the (goal, threshold) index stays free.
func (s *Store) SaveMilestone(ctx context.Context, m *models.Milestone) error {
	if m.ID == uuid.Nil {
		return s.conn(ctx).Create(m).Error
	}
	return s.conn(ctx).Save(m).Error
}

func (s *Store) DeleteMilestones(ctx context.Context, goalID uuid.UUID) error {
	return s.conn(ctx).Where("goal_id = ?", goalID).Delete(&models.Milestone{}).Error
}

func (s *Store) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	if err := s.conn(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.conn(ctx).Create(sub).Error
}

func (s *Store) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	return s.conn(ctx).Save(sub).Error
}

// ListSubmissions returns submissions newest first, filtered by status when
// status is not empty.
func (s *Store) ListSubmissions(ctx context.Context, status string) ([]models.Submission, error) {
	q := s.conn(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var subs []models.Submission
	err := q.Find(&subs).Error
	return subs, err
}

func (s *Store) AppendLedger(ctx context.Context, e *models.LedgerEntry) error {
	return s.conn(ctx).Create(e).Error
}

// Ledger returns a goal's ledger in the order entries were written.
func (s *Store) Ledger(ctx context.Context, goalID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.conn(ctx).Where("goal_id = ?", goalID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (s *Store) Transaction(ctx context.Context, fn func(tx lifecycle.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
