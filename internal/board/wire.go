package board

import (
	"encoding/json"
	"fmt"
	"time"
)

// StorageKey is the key the board snapshot is saved under.
const StorageKey = "todo-storage"

// wireVersion is bumped when the persisted shape changes incompatibly.
const wireVersion = 0

type wireEnvelope struct {
	State   wireState `json:"state"`
	Version int       `json:"version"`
}

type wireState struct {
	Tasks   []wireTask  `json:"tasks"`
	Filters wireFilters `json:"filters"`
	Sort    wireSort    `json:"sort"`
}

type wireTask struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	DueDate           string   `json:"dueDate,omitempty"`
	Tags              []string `json:"tags"`
	Priority          Priority `json:"priority"`
	Status            Status   `json:"status"`
	IsRecurring       bool     `json:"isRecurring"`
	RecurringInterval *int     `json:"recurringInterval,omitempty"`
	CreatedAt         string   `json:"createdAt"`
	CompletedAt       string   `json:"completedAt,omitempty"`
}

type wireFilters struct {
	Search    string        `json:"search"`
	Tags      []string      `json:"tags"`
	DateRange wireDateRange `json:"dateRange"`
	Priority  *Priority     `json:"priority,omitempty"`
}

type wireDateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type wireSort struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// MarshalSnapshot encodes a snapshot with dates as RFC 3339 strings.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	env := wireEnvelope{
		Version: wireVersion,
		State: wireState{
			Tasks: make([]wireTask, 0, len(s.Tasks)),
			Filters: wireFilters{
				Search: s.Filters.Search,
				Tags:   append([]string{}, s.Filters.Tags...),
				DateRange: wireDateRange{
					Start: formatTime(s.Filters.DateRange.Start),
					End:   formatTime(s.Filters.DateRange.End),
				},
				Priority: s.Filters.Priority,
			},
			Sort: wireSort{Field: s.Sort.Field, Direction: s.Sort.Direction},
		},
	}
	for _, t := range s.Tasks {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		env.State.Tasks = append(env.State.Tasks, wireTask{
			ID:                t.ID,
			Title:             t.Title,
			Description:       t.Description,
			DueDate:           formatTime(t.DueDate),
			Tags:              tags,
			Priority:          t.Priority,
			Status:            t.Status,
			IsRecurring:       t.IsRecurring,
			RecurringInterval: t.RecurringInterval,
			CreatedAt:         t.CreatedAt.Format(time.RFC3339Nano),
			CompletedAt:       formatTime(t.CompletedAt),
		})
	}
	return json.Marshal(env)
}

// UnmarshalSnapshot decodes what MarshalSnapshot produced.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version != wireVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", env.Version)
	}

	snap := &Snapshot{
		Tasks: make([]Task, 0, len(env.State.Tasks)),
		Sort:  Sort{Field: env.State.Sort.Field, Direction: env.State.Sort.Direction},
	}

	var err error
	f := env.State.Filters
	snap.Filters = Filters{Search: f.Search, Tags: f.Tags, Priority: f.Priority}
	if snap.Filters.Tags == nil {
		snap.Filters.Tags = []string{}
	}
	if snap.Filters.DateRange.Start, err = parseTime(f.DateRange.Start); err != nil {
		return nil, fmt.Errorf("decode filter start: %w", err)
	}
	if snap.Filters.DateRange.End, err = parseTime(f.DateRange.End); err != nil {
		return nil, fmt.Errorf("decode filter end: %w", err)
	}

	for _, wt := range env.State.Tasks {
		t := Task{
			ID:                wt.ID,
			Title:             wt.Title,
			Description:       wt.Description,
			Tags:              wt.Tags,
			Priority:          wt.Priority,
			Status:            wt.Status,
			IsRecurring:       wt.IsRecurring,
			RecurringInterval: wt.RecurringInterval,
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.DueDate, err = parseTime(wt.DueDate); err != nil {
			return nil, fmt.Errorf("decode task %s due date: %w", wt.ID, err)
		}
		if t.CompletedAt, err = parseTime(wt.CompletedAt); err != nil {
			return nil, fmt.Errorf("decode task %s completed at: %w", wt.ID, err)
		}
		created, err := parseTime(wt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("decode task %s created at: %w", wt.ID, err)
		}
		if created != nil {
			t.CreatedAt = *created
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	return snap, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
