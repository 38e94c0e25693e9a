package board

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Stages lists the workflow stages in board order.
var Stages = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

type Task struct {
	ID                string
	Title             string
	Description       string
	DueDate           *time.Time
	Tags              []string
	Priority          Priority
	Status            Status
	IsRecurring       bool
	RecurringInterval *int // minutes
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// Completed reports whether the task went through Complete and has not been
// reverted since.
func (t Task) Completed() bool {
	return t.CompletedAt != nil
}

func (t Task) clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Tags != nil {
		c.Tags = append([]string{}, t.Tags...)
	}
	if t.RecurringInterval != nil {
		n := *t.RecurringInterval
		c.RecurringInterval = &n
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return c
}

// NewTask carries the caller supplied fields for Add.
type NewTask struct {
	Title             string
	Description       string
	DueDate           *time.Time
	Tags              []string
	Priority          Priority // defaults to medium
	Status            Status   // defaults to todo
	IsRecurring       bool
	RecurringInterval *int
}

// Patch is a per-field optional update. Nil fields are left untouched.
type Patch struct {
	Title                  *string
	Description            *string
	DueDate                *time.Time
	ClearDueDate           bool
	Tags                   *[]string
	Priority               *Priority
	IsRecurring            *bool
	RecurringInterval      *int
	ClearRecurringInterval bool
}

type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

type Filters struct {
	Search    string
	Tags      []string
	DateRange DateRange
	Priority  *Priority
}

// FilterPatch is merged shallowly into Filters by SetFilters.
type FilterPatch struct {
	Search        *string
	Tags          *[]string
	DateRange     *DateRange
	Priority      *Priority
	ClearPriority bool
}

type SortField string

const (
	SortTitle     SortField = "title"
	SortDueDate   SortField = "dueDate"
	SortPriority  SortField = "priority"
	SortCreatedAt SortField = "createdAt"
)

var SortFields = []SortField{SortTitle, SortDueDate, SortPriority, SortCreatedAt}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Field     SortField
	Direction Direction
}

type SortPatch struct {
	Field     *SortField
	Direction *Direction
}

// Snapshot is the persisted shape of the board.
type Snapshot struct {
	Tasks   []Task
	Filters Filters
	Sort    Sort
}

func initialFilters() Filters {
	return Filters{Tags: []string{}}
}

func initialSort() Sort {
	return Sort{Field: SortCreatedAt, Direction: Desc}
}

func cloneFilters(f Filters) Filters {
	c := f
	c.Tags = append([]string{}, f.Tags...)
	if f.DateRange.Start != nil {
		s := *f.DateRange.Start
		c.DateRange.Start = &s
	}
	if f.DateRange.End != nil {
		e := *f.DateRange.End
		c.DateRange.End = &e
	}
	if f.Priority != nil {
		p := *f.Priority
		c.Priority = &p
	}
	return c
}
