// Package view derives the ordered, filtered task list shown for one stage.
// Everything here is pure: inputs are never mutated and identical inputs give
// identical output, ties included.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/sadopc/taskboard/internal/board"
)

// Derive filters tasks down to stage and the active filters, then sorts them.
func Derive(tasks []board.Task, f board.Filters, s board.Sort, stage board.Status) []board.Task {
	out := make([]board.Task, 0, len(tasks))
	search := strings.ToLower(f.Search)
	inRange := dueWithin(f.DateRange)

	for _, t := range tasks {
		if t.Status != stage {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if len(f.Tags) > 0 && !sharesTag(t.Tags, f.Tags) {
			continue
		}
		if !f.DateRange.IsZero() && (t.DueDate == nil || !inRange(*t.DueDate)) {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b board.Task) int {
		return compare(a, b, s)
	})
	return out
}

// Columns derives every stage in board order.
func Columns(snap board.Snapshot) map[board.Status][]board.Task {
	cols := make(map[board.Status][]board.Task, len(board.Stages))
	for _, st := range board.Stages {
		cols[st] = Derive(snap.Tasks, snap.Filters, snap.Sort, st)
	}
	return cols
}

func matchesSearch(t board.Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func sharesTag(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// dueWithin widens the range to whole days in each bound's own location. An
// absent bound is unbounded on that side.
func dueWithin(r board.DateRange) func(time.Time) bool {
	var lo, hi *time.Time
	if r.Start != nil {
		t := StartOfDay(*r.Start)
		lo = &t
	}
	if r.End != nil {
		t := EndOfDay(*r.End)
		hi = &t
	}
	return func(due time.Time) bool {
		if lo != nil && due.Before(*lo) {
			return false
		}
		if hi != nil && due.After(*hi) {
			return false
		}
		return true
	}
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
