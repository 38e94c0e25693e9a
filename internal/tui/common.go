package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/taskboard/internal/board"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBoard viewState = iota
	viewStats
)

var viewNames = []string{"Board", "Stats"}

var stageTitles = map[board.Status]string{
	board.StatusTodo:       "To Do",
	board.StatusInProgress: "In Progress",
	board.StatusDone:       "Done",
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

const dateLayout = "2006-01-02"

// parseDate reads an optional YYYY-MM-DD value in local time.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("use YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(dateLayout)
}

// parseTags splits a comma separated list, dropping blanks and repeats.
func parseTags(s string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// formatCountdown renders the time left before an auto-delete fires.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%ds", secs)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
