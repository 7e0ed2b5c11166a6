package lifecycle

import (
	"context"

	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/google/uuid"
)

// Store is the record store the coordinator reads and writes. Lookups of
// missing records return an error matching ErrNotFound.
type Store interface {
	GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	SaveGoal(ctx context.Context, goal *models.Goal) error

	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, goalID uuid.UUID) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	DeleteTasks(ctx context.Context, goalID uuid.UUID) error
	// SetTaskRewards overwrites reward_amount on every task of the goal.
	SetTaskRewards(ctx context.Context, goalID uuid.UUID, reward int64) error

	ListMilestones(ctx context.Context, goalID uuid.UUID) ([]models.Milestone, error)
	SaveMilestone(ctx context.Context, m *models.Milestone) error
	DeleteMilestones(ctx context.Context, goalID uuid.UUID) error

	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	CreateSubmission(ctx context.Context, s *models.Submission) error
	SaveSubmission(ctx context.Context, s *models.Submission) error

	AppendLedger(ctx context.Context, e *models.LedgerEntry) error

	// Transaction runs fn against a Store bound to one transaction. Any error
	// from fn rolls back every write made through that Store.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Notice is a user-facing message with a short title and a description.
type Notice struct {
	UserID   uuid.UUID
	GoalID   uuid.UUID
	Type     string
	Title    string
	Body     string
	Metadata map[string]interface{}
}

// Notifier delivers notices. Delivery is best effort; implementations log
// their own failures.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notice) {}
