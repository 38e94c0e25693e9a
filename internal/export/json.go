package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskboard/internal/board"
)

type document struct {
	ExportedAt string      `json:"exported_at" yaml:"exported_at"`
	Count      int         `json:"count" yaml:"count"`
	Tasks      []taskEntry `json:"tasks" yaml:"tasks"`
}

type taskEntry struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status          string   `json:"status" yaml:"status"`
	Priority        string   `json:"priority" yaml:"priority"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Due             string   `json:"due,omitempty" yaml:"due,omitempty"`
	Recurring       bool     `json:"recurring" yaml:"recurring"`
	IntervalMinutes *int     `json:"interval_minutes,omitempty" yaml:"interval_minutes,omitempty"`
	Interval        string   `json:"interval,omitempty" yaml:"interval,omitempty"`
	CreatedAt       string   `json:"created_at" yaml:"created_at"`
	CompletedAt     string   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

func buildDocument(tasks []board.Task) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
		Tasks:      make([]taskEntry, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, taskEntry{
			ID:              t.ID,
			Title:           t.Title,
			Description:     t.Description,
			Status:          string(t.Status),
			Priority:        string(t.Priority),
			Tags:            t.Tags,
			Due:             formatOptional(t.DueDate),
			Recurring:       t.IsRecurring,
			IntervalMinutes: t.RecurringInterval,
			Interval:        formatInterval(t.RecurringInterval),
			CreatedAt:       t.CreatedAt.Local().Format(time.RFC3339),
			CompletedAt:     formatOptional(t.CompletedAt),
		})
	}
	return doc
}

func ToJSON(tasks []board.Task, path string) error {
	data, err := json.MarshalIndent(buildDocument(tasks), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
