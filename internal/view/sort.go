package view

import (
	"strings"

	"github.com/sadopc/taskboard/internal/board"
)

// compare orders a before b per s. Values compare as raw strings or instants,
// so priorities order high < low < medium and titles are case-sensitive. A
// task missing the sort value goes last in both directions; equal values
// return 0 so the stable sort keeps input order.
func compare(a, b board.Task, s board.Sort) int {
	aok, bok := hasValue(a, s.Field), hasValue(b, s.Field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	c := compareValues(a, b, s.Field)
	if s.Direction == board.Desc {
		return -c
	}
	return c
}

func hasValue(t board.Task, f board.SortField) bool {
	switch f {
	case board.SortTitle:
		return t.Title != ""
	case board.SortDueDate:
		return t.DueDate != nil
	case board.SortPriority:
		return t.Priority != ""
	case board.SortCreatedAt:
		return !t.CreatedAt.IsZero()
	}
	return false
}

func compareValues(a, b board.Task, f board.SortField) int {
	switch f {
	case board.SortTitle:
		return strings.Compare(a.Title, b.Title)
	case board.SortDueDate:
		return a.DueDate.Compare(*b.DueDate)
	case board.SortPriority:
		return strings.Compare(string(a.Priority), string(b.Priority))
	case board.SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}
