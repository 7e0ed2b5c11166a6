package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/google/uuid"
)

var errInjected = errors.New("injected failure")

type memData struct {
	seq         int
	goals       map[uuid.UUID]models.Goal
	tasks       map[uuid.UUID]models.Task
	order       map[uuid.UUID]int
	milestones  map[uuid.UUID]models.Milestone
	submissions map[uuid.UUID]models.Submission
	ledger      []models.LedgerEntry
}

func (d *memData) clone() *memData {
	c := &memData{
		seq:         d.seq,
		goals:       make(map[uuid.UUID]models.Goal, len(d.goals)),
		tasks:       make(map[uuid.UUID]models.Task, len(d.tasks)),
		order:       make(map[uuid.UUID]int, len(d.order)),
		milestones:  make(map[uuid.UUID]models.Milestone, len(d.milestones)),
		submissions: make(map[uuid.UUID]models.Submission, len(d.submissions)),
		ledger:      append([]models.LedgerEntry(nil), d.ledger...),
	}
	for k, v := range d.goals {
		c.goals[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.order {
		c.order[k] = v
	}
	for k, v := range d.milestones {
		c.milestones[k] = v
	}
	for k, v := range d.submissions {
		c.submissions[k] = v
	}
	return c
}

// memStore is an in-memory Store. Transactions snapshot the data and
// restore it when fn fails. failOn makes the named method return errInjected.
type memStore struct {
	mu     *sync.Mutex
	d      **memData
	inTx   bool
	failOn map[string]bool
}

func newMemStore() *memStore {
	d := &memData{
		goals:       map[uuid.UUID]models.Goal{},
		tasks:       map[uuid.UUID]models.Task{},
		order:       map[uuid.UUID]int{},
		milestones:  map[uuid.UUID]models.Milestone{},
		submissions: map[uuid.UUID]models.Submission{},
	}
	return &memStore{mu: &sync.Mutex{}, d: &d, failOn: map[string]bool{}}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) data() *memData { return *s.d }

func (s *memStore) check(method string) error {
	if s.failOn[method] {
		return errInjected
	}
	return nil
}

func (s *memStore) addGoal(g models.Goal) models.Goal {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	defer s.lock()()
	s.data().goals[g.ID] = g
	return g
}

func (s *memStore) GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	defer s.lock()()
	g, ok := s.data().goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *memStore) SaveGoal(ctx context.Context, goal *models.Goal) error {
	defer s.lock()()
	if err := s.check("SaveGoal"); err != nil {
		return err
	}
	s.data().goals[goal.ID] = *goal
	return nil
}

func (s *memStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	defer s.lock()()
	t, ok := s.data().tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *memStore) ListTasks(ctx context.Context, goalID uuid.UUID) ([]models.Task, error) {
	defer s.lock()()
	d := s.data()
	var out []models.Task
	for _, t := range d.tasks {
		if t.GoalID == goalID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.order[out[i].ID] < d.order[out[j].ID] })
	return out, nil
}

func (s *memStore) CreateTask(ctx context.Context, task *models.Task) error {
	defer s.lock()()
	if err := s.check("CreateTask"); err != nil {
		return err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	d := s.data()
	d.seq++
	d.order[task.ID] = d.seq
	d.tasks[task.ID] = *task
	return nil
}

func (s *memStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	if err := s.check("DeleteTask"); err != nil {
		return err
	}
	if _, ok := s.data().tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.data().tasks, id)
	return nil
}

func (s *memStore) DeleteTasks(ctx context.Context, goalID uuid.UUID) error {
	defer s.lock()()
	if err := s.check("DeleteTasks"); err != nil {
		return err
	}
	for id, t := range s.data().tasks {
		if t.GoalID == goalID {
			delete(s.data().tasks, id)
		}
	}
	return nil
}

func (s *memStore) SetTaskRewards(ctx context.Context, goalID uuid.UUID, reward int64) error {
	defer s.lock()()
	if err := s.check("SetTaskRewards"); err != nil {
		return err
	}
	for id, t := range s.data().tasks {
		if t.GoalID == goalID {
			t.RewardAmount = reward
			s.data().tasks[id] = t
		}
	}
	return nil
}

func (s *memStore) ListMilestones(ctx context.Context, goalID uuid.UUID) ([]models.Milestone, error) {
	defer s.lock()()
	var out []models.Milestone
	for _, m := range s.data().milestones {
		if m.GoalID == goalID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out, nil
}

func (s *memStore) SaveMilestone(ctx context.Context, m *models.Milestone) error {
	defer s.lock()()
	if err := s.check("SaveMilestone"); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.data().milestones[m.ID] = *m
	return nil
}

func (s *memStore) DeleteMilestones(ctx context.Context, goalID uuid.UUID) error {
	defer s.lock()()
	for id, m := range s.data().milestones {
		if m.GoalID == goalID {
			delete(s.data().milestones, id)
		}
	}
	return nil
}

func (s *memStore) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	defer s.lock()()
	sub, ok := s.data().submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *memStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	defer s.lock()()
	if err := s.check("CreateSubmission"); err != nil {
		return err
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.data().submissions[sub.ID] = *sub
	return nil
}

func (s *memStore) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	defer s.lock()()
	s.data().submissions[sub.ID] = *sub
	return nil
}

func (s *memStore) AppendLedger(ctx context.Context, e *models.LedgerEntry) error {
	defer s.lock()()
	if err := s.check("AppendLedger"); err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.data().ledger = append(s.data().ledger, *e)
	return nil
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data().clone()
	tx := &memStore{mu: s.mu, d: s.d, inTx: true, failOn: s.failOn}
	if err := fn(tx); err != nil {
		*s.d = snapshot
		return err
	}
	return nil
}

func (s *memStore) ledger() []models.LedgerEntry {
	defer s.lock()()
	return append([]models.LedgerEntry(nil), s.data().ledger...)
}

func (s *memStore) submissionsFor(taskID uuid.UUID) []models.Submission {
	defer s.lock()()
	var out []models.Submission
	for _, sub := range s.data().submissions {
		if sub.TaskID == taskID {
			out = append(out, sub)
		}
	}
	return out
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(ctx context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}
