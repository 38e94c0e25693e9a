// Package board owns the canonical task collection and every operation that
// mutates it, including the auto-deletion countdown armed by Complete.
package board

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AutoDeleteDelay is how long a completed, non-recurring task survives.
const AutoDeleteDelay = 10 * time.Second

const maxIDAttempts = 8

// Persistence loads and saves whole-board snapshots. Load returns (nil, nil)
// when nothing has been stored yet.
type Persistence interface {
	Load() (*Snapshot, error)
	Save(Snapshot) error
}

type Option func(*Store)

func WithPersistence(p Persistence) Option { return func(s *Store) { s.persist = p } }
func WithClock(c Clock) Option             { return func(s *Store) { s.clock = c } }
func WithIDGenerator(g IDGenerator) Option { return func(s *Store) { s.ids = g } }
func WithLogger(l *zap.Logger) Option      { return func(s *Store) { s.log = l } }

// WithDeleteDelay overrides AutoDeleteDelay.
func WithDeleteDelay(d time.Duration) Option { return func(s *Store) { s.delay = d } }

type pendingDelete struct {
	timer Timer
	at    time.Time
}

// Store is safe for concurrent use. Operations and countdown callbacks are
// serialized through a single mutex.
type Store struct {
	mu      sync.Mutex
	tasks   []Task
	filters Filters
	sort    Sort
	pending map[string]*pendingDelete

	persist Persistence
	clock   Clock
	ids     IDGenerator
	log     *zap.Logger
	delay   time.Duration
}

// New builds a Store and restores the last saved snapshot, if any. A failed
// load falls back to an empty board.
func New(opts ...Option) *Store {
	s := &Store{
		filters: initialFilters(),
		sort:    initialSort(),
		pending: make(map[string]*pendingDelete),
		clock:   RealClock{},
		ids:     UUIDGenerator{},
		log:     zap.NewNop(),
		delay:   AutoDeleteDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	if s.persist == nil {
		return
	}
	snap, err := s.persist.Load()
	if err != nil {
		s.log.Warn("load snapshot failed, starting empty", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.ID == "" || seen[t.ID] {
			s.log.Warn("dropping task with missing or duplicate id", zap.String("task_id", t.ID))
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t.clone())
	}
	s.filters = cloneFilters(snap.Filters)
	if validateStruct(sortInput{Field: snap.Sort.Field, Direction: snap.Sort.Direction}) == nil {
		s.sort = snap.Sort
	}

	// Countdowns are not persisted; completed one-shot tasks get a fresh one.
	for _, t := range s.tasks {
		if t.CompletedAt != nil && !t.IsRecurring {
			s.armLocked(t.ID)
		}
	}
	s.log.Info("snapshot restored", zap.Int("tasks", len(s.tasks)), zap.Int("countdowns", len(s.pending)))
}

// Add creates a task in the requested stage (todo when unset).
func (s *Store) Add(in NewTask) (Task, error) {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if err := validateTask(in.Title, in.Priority, in.Status); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newIDLocked()
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:                id,
		Title:             in.Title,
		Description:       in.Description,
		DueDate:           in.DueDate,
		Tags:              in.Tags,
		Priority:          in.Priority,
		Status:            in.Status,
		IsRecurring:       in.IsRecurring,
		RecurringInterval: in.RecurringInterval,
		CreatedAt:         s.clock.Now(),
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t = t.clone()
	s.tasks = append(s.tasks, t)
	s.saveLocked()
	return t.clone(), nil
}

func (s *Store) newIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids.NewID()
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate task id: %d attempts collided", maxIDAttempts)
}

// Update applies the fields present in p. It never changes Status or
// CompletedAt. Unknown ids are ignored.
func (s *Store) Update(id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	t := s.tasks[i].clone()

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	switch {
	case p.ClearRecurringInterval:
		t.RecurringInterval = nil
	case p.RecurringInterval != nil:
		n := *p.RecurringInterval
		t.RecurringInterval = &n
	}

	if err := validateTask(t.Title, t.Priority, t.Status); err != nil {
		return err
	}
	s.tasks[i] = t

	if p.IsRecurring != nil && t.CompletedAt != nil {
		_, armed := s.pending[id]
		switch {
		case t.IsRecurring && armed:
			s.cancelLocked(id)
		case !t.IsRecurring && !armed:
			s.armLocked(id)
		}
	}
	s.saveLocked()
	return nil
}

// Delete removes the task and cancels its countdown, if any.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)
	if s.removeLocked(id) {
		s.saveLocked()
	}
}

// Move sets the stage directly. Reaching done this way does not timestamp the
// task and does not arm deletion.
func (s *Store) Move(id string, status Status) error {
	if err := validateStruct(statusInput{Status: status}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Status = status
	s.saveLocked()
	return nil
}

// Complete marks the task done. Non-recurring tasks are deleted after the
// store's delete delay unless Uncomplete or Delete intervenes.
func (s *Store) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	now := s.clock.Now()
	s.tasks[i].Status = StatusDone
	s.tasks[i].CompletedAt = &now

	if s.tasks[i].IsRecurring {
		s.cancelLocked(id)
	} else {
		s.armLocked(id)
	}
	s.saveLocked()
}

// Uncomplete reverts a completed task to todo and disarms its countdown.
func (s *Store) Uncomplete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.tasks[i].CompletedAt == nil {
		return
	}
	s.cancelLocked(id)
	s.tasks[i].Status = StatusTodo
	s.tasks[i].CompletedAt = nil
	s.saveLocked()
}

func (s *Store) SetFilters(p FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Search != nil {
		s.filters.Search = *p.Search
	}
	if p.Tags != nil {
		s.filters.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.DateRange != nil {
		s.filters.DateRange = cloneFilters(Filters{DateRange: *p.DateRange}).DateRange
	}
	switch {
	case p.ClearPriority:
		s.filters.Priority = nil
	case p.Priority != nil:
		pr := *p.Priority
		s.filters.Priority = &pr
	}
	s.saveLocked()
}

func (s *Store) SetSort(p SortPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.sort
	if p.Field != nil {
		next.Field = *p.Field
	}
	if p.Direction != nil {
		next.Direction = *p.Direction
	}
	if err := validateStruct(sortInput{Field: next.Field, Direction: next.Direction}); err != nil {
		return err
	}
	s.sort = next
	s.saveLocked()
	return nil
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksLocked()
}

func (s *Store) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFilters(s.filters)
}

func (s *Store) Sort() Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Snapshot returns a consistent copy of tasks, filters and sort.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// DeletesAt reports when the pending countdown for id lapses.
func (s *Store) DeletesAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pd, ok := s.pending[id]
	if !ok {
		return time.Time{}, false
	}
	return pd.at, true
}

// Tags returns every distinct tag in first-seen order.
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.tasks {
		for _, tag := range t.Tags {
			if tag = strings.TrimSpace(tag); tag != "" && !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

// Close stops every pending countdown without deleting the tasks.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.cancelLocked(id)
	}
}

// --- locked helpers ---

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// armLocked replaces any countdown already pending for id.
func (s *Store) armLocked(id string) {
	s.cancelLocked(id)
	pd := &pendingDelete{at: s.clock.Now().Add(s.delay)}
	s.pending[id] = pd
	pd.timer = s.clock.AfterFunc(s.delay, func() { s.expire(id, pd) })
}

func (s *Store) cancelLocked(id string) {
	pd, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	if pd.timer != nil {
		pd.timer.Stop()
	}
}

// expire runs on the timer goroutine. A countdown that was cancelled or
// superseded after the runtime timer fired is no longer in the side table
// and must not act.
func (s *Store) expire(id string, pd *pendingDelete) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] != pd {
		return
	}
	delete(s.pending, id)
	if s.removeLocked(id) {
		s.log.Info("completed task expired", zap.String("task_id", id))
		s.saveLocked()
	}
}

func (s *Store) tasksLocked() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:   s.tasksLocked(),
		Filters: cloneFilters(s.filters),
		Sort:    s.sort,
	}
}

// saveLocked is fire-and-forget: a failed write is logged and the in-memory
// state stays authoritative.
func (s *Store) saveLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(s.snapshotLocked()); err != nil {
		s.log.Error("save snapshot failed", zap.Error(err))
	}
}
