package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sadopc/taskboard/internal/board"
)

var csvHeader = []string{"ID", "Title", "Description", "Status", "Priority", "Tags", "Due", "Recurring", "Interval", "Created", "Completed"}

func ToCSV(tasks []board.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			string(t.Priority),
			strings.Join(t.Tags, ";"),
			formatOptional(t.DueDate),
			fmt.Sprintf("%t", t.IsRecurring),
			formatInterval(t.RecurringInterval),
			t.CreatedAt.Local().Format(time.RFC3339),
			formatOptional(t.CompletedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}

func formatInterval(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return board.SplitInterval(*minutes).String()
}
