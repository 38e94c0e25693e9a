package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskboard/internal/board"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func ids(tasks []board.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func noFilters() board.Filters {
	return board.Filters{Tags: []string{}}
}

func byTitle() board.Sort {
	return board.Sort{Field: board.SortTitle, Direction: board.Asc}
}

func prio(p board.Priority) *board.Priority { return &p }

// ============================================================
// Stage + search + tags + priority
// ============================================================

func TestDeriveExampleScenario(t *testing.T) {
	a := board.Task{ID: "A", Title: "Write report", Priority: board.PriorityHigh, Status: board.StatusTodo, CreatedAt: now}
	b := board.Task{ID: "B", Title: "Review", Priority: board.PriorityLow, Status: board.StatusTodo, DueDate: at(24 * time.Hour), CreatedAt: now}

	f := noFilters()
	f.Priority = prio(board.PriorityHigh)
	got := Derive([]board.Task{a, b}, f, byTitle(), board.StatusTodo)
	assert.Equal(t, []string{"A"}, ids(got))
}

func TestDeriveFiltersByStage(t *testing.T) {
	tasks := []board.Task{
		{ID: "1", Title: "a", Status: board.StatusTodo},
		{ID: "2", Title: "b", Status: board.StatusInProgress},
		{ID: "3", Title: "c", Status: board.StatusDone},
	}
	assert.Equal(t, []string{"2"}, ids(Derive(tasks, noFilters(), byTitle(), board.StatusInProgress)))
	assert.Empty(t, Derive(nil, noFilters(), byTitle(), board.StatusDone))
}

func TestDeriveSearch(t *testing.T) {
	tasks := []board.Task{
		{ID: "title", Title: "Deploy API", Status: board.StatusTodo},
		{ID: "desc", Title: "x", Description: "rotate the api keys", Status: board.StatusTodo},
		{ID: "tag", Title: "y", Tags: []string{"Backend-API"}, Status: board.StatusTodo},
		{ID: "none", Title: "z", Description: "unrelated", Status: board.StatusTodo},
	}
	f := noFilters()
	f.Search = "API"
	got := Derive(tasks, f, board.Sort{Field: board.SortCreatedAt, Direction: board.Asc}, board.StatusTodo)
	assert.ElementsMatch(t, []string{"title", "desc", "tag"}, ids(got))
}

func TestDeriveTagsAreOR(t *testing.T) {
	tasks := []board.Task{
		{ID: "1", Title: "a", Tags: []string{"work"}, Status: board.StatusTodo},
		{ID: "2", Title: "b", Tags: []string{"home"}, Status: board.StatusTodo},
		{ID: "3", Title: "c", Tags: []string{"misc"}, Status: board.StatusTodo},
		{ID: "4", Title: "d", Status: board.StatusTodo},
	}
	f := noFilters()
	f.Tags = []string{"work", "home"}
	assert.Equal(t, []string{"1", "2"}, ids(Derive(tasks, f, byTitle(), board.StatusTodo)))
}

func TestDerivePriorityFilterReversible(t *testing.T) {
	tasks := []board.Task{
		{ID: "1", Title: "a", Priority: board.PriorityHigh, Status: board.StatusTodo},
		{ID: "2", Title: "b", Priority: board.PriorityLow, Status: board.StatusTodo},
		{ID: "3", Title: "c", Priority: board.PriorityMedium, Status: board.StatusTodo},
	}
	all := Derive(tasks, noFilters(), byTitle(), board.StatusTodo)

	f := noFilters()
	f.Priority = prio(board.PriorityHigh)
	assert.Equal(t, []string{"1"}, ids(Derive(tasks, f, byTitle(), board.StatusTodo)))

	f.Priority = nil
	assert.Equal(t, ids(all), ids(Derive(tasks, f, byTitle(), board.StatusTodo)))
}

// ============================================================
// Date range
// ============================================================

func TestDeriveDateRangeWholeDays(t *testing.T) {
	day := func(d, h int) *time.Time {
		t := time.Date(2026, 5, d, h, 0, 0, 0, time.UTC)
		return &t
	}
	tasks := []board.Task{
		{ID: "before", Title: "a", DueDate: day(9, 23), Status: board.StatusTodo},
		{ID: "startday", Title: "b", DueDate: day(10, 0), Status: board.StatusTodo},
		{ID: "endday", Title: "c", DueDate: day(12, 23), Status: board.StatusTodo},
		{ID: "after", Title: "d", DueDate: day(13, 0), Status: board.StatusTodo},
		{ID: "nodue", Title: "e", Status: board.StatusTodo},
	}
	f := noFilters()
	f.DateRange = board.DateRange{Start: day(10, 15), End: day(12, 1)}
	assert.Equal(t, []string{"startday", "endday"}, ids(Derive(tasks, f, byTitle(), board.StatusTodo)))
}

func TestDeriveDateRangeOpenEnded(t *testing.T) {
	tasks := []board.Task{
		{ID: "past", Title: "a", DueDate: at(-48 * time.Hour), Status: board.StatusTodo},
		{ID: "future", Title: "b", DueDate: at(48 * time.Hour), Status: board.StatusTodo},
		{ID: "ancient", Title: "c", DueDate: func() *time.Time { t := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC); return &t }(), Status: board.StatusTodo},
		{ID: "nodue", Title: "d", Status: board.StatusTodo},
	}

	f := noFilters()
	f.DateRange = board.DateRange{Start: at(0)}
	assert.Equal(t, []string{"future"}, ids(Derive(tasks, f, byTitle(), board.StatusTodo)))

	f.DateRange = board.DateRange{End: at(0)}
	assert.Equal(t, []string{"past", "ancient"}, ids(Derive(tasks, f, byTitle(), board.StatusTodo)))
}

func TestStartEndOfDay(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	in := time.Date(2026, 1, 2, 15, 4, 5, 6, loc)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, loc), StartOfDay(in))
	assert.Equal(t, time.Date(2026, 1, 2, 23, 59, 59, 999999999, loc), EndOfDay(in))
}

// ============================================================
// Sorting
// ============================================================

func TestSortDueDateUnknownsLastBothDirections(t *testing.T) {
	tasks := []board.Task{
		{ID: "none1", Title: "a", Status: board.StatusTodo},
		{ID: "late", Title: "b", DueDate: at(48 * time.Hour), Status: board.StatusTodo},
		{ID: "none2", Title: "c", Status: board.StatusTodo},
		{ID: "soon", Title: "d", DueDate: at(time.Hour), Status: board.StatusTodo},
	}

	asc := Derive(tasks, noFilters(), board.Sort{Field: board.SortDueDate, Direction: board.Asc}, board.StatusTodo)
	assert.Equal(t, []string{"soon", "late", "none1", "none2"}, ids(asc))

	desc := Derive(tasks, noFilters(), board.Sort{Field: board.SortDueDate, Direction: board.Desc}, board.StatusTodo)
	assert.Equal(t, []string{"late", "soon", "none1", "none2"}, ids(desc))
}

func TestSortPriorityAsStrings(t *testing.T) {
	tasks := []board.Task{
		{ID: "m", Title: "a", Priority: board.PriorityMedium, Status: board.StatusTodo},
		{ID: "h", Title: "b", Priority: board.PriorityHigh, Status: board.StatusTodo},
		{ID: "l", Title: "c", Priority: board.PriorityLow, Status: board.StatusTodo},
		{ID: "none", Title: "d", Status: board.StatusTodo},
	}
	asc := Derive(tasks, noFilters(), board.Sort{Field: board.SortPriority, Direction: board.Asc}, board.StatusTodo)
	assert.Equal(t, []string{"h", "l", "m", "none"}, ids(asc))

	desc := Derive(tasks, noFilters(), board.Sort{Field: board.SortPriority, Direction: board.Desc}, board.StatusTodo)
	assert.Equal(t, []string{"m", "l", "h", "none"}, ids(desc))
}

func TestSortTitleCaseSensitiveStableTies(t *testing.T) {
	tasks := []board.Task{
		{ID: "1", Title: "beta", Status: board.StatusTodo},
		{ID: "2", Title: "Beta", Status: board.StatusTodo},
		{ID: "3", Title: "alpha", Status: board.StatusTodo},
		{ID: "4", Title: "beta", Status: board.StatusTodo},
	}
	asc := Derive(tasks, noFilters(), byTitle(), board.StatusTodo)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(asc))

	desc := Derive(tasks, noFilters(), board.Sort{Field: board.SortTitle, Direction: board.Desc}, board.StatusTodo)
	assert.Equal(t, []string{"1", "4", "3", "2"}, ids(desc))
}

func TestSortCreatedAtDesc(t *testing.T) {
	tasks := []board.Task{
		{ID: "old", Title: "a", CreatedAt: now.Add(-time.Hour), Status: board.StatusTodo},
		{ID: "new", Title: "b", CreatedAt: now, Status: board.StatusTodo},
	}
	got := Derive(tasks, noFilters(), board.Sort{Field: board.SortCreatedAt, Direction: board.Desc}, board.StatusTodo)
	assert.Equal(t, []string{"new", "old"}, ids(got))
}

// ============================================================
// Purity
// ============================================================

func TestDeriveIsPure(t *testing.T) {
	tasks := []board.Task{
		{ID: "1", Title: "same", Status: board.StatusTodo},
		{ID: "2", Title: "same", Status: board.StatusTodo},
		{ID: "3", Title: "other", Status: board.StatusTodo},
	}
	before := ids(tasks)
	s := byTitle()

	first := Derive(tasks, noFilters(), s, board.StatusTodo)
	second := Derive(tasks, noFilters(), s, board.StatusTodo)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, before, ids(tasks), "input order untouched")
	assert.Equal(t, []string{"3", "1", "2"}, ids(first))
}

func TestColumnsWithStore(t *testing.T) {
	clock := board.NewFakeClock(now)
	s := board.New(board.WithClock(clock))
	defer s.Close()

	b, err := s.Add(board.NewTask{Title: "B"})
	require.NoError(t, err)
	_, err = s.Add(board.NewTask{Title: "A", Status: board.StatusInProgress})
	require.NoError(t, err)

	s.Complete(b.ID)
	cols := Columns(s.Snapshot())
	require.Len(t, cols[board.StatusDone], 1)
	assert.Equal(t, b.ID, cols[board.StatusDone][0].ID)
	assert.NotNil(t, cols[board.StatusDone][0].CompletedAt)
	assert.Len(t, cols[board.StatusInProgress], 1)
	assert.Empty(t, cols[board.StatusTodo])

	clock.Advance(board.AutoDeleteDelay)
	assert.Empty(t, Columns(s.Snapshot())[board.StatusDone])
	assert.Len(t, s.Tasks(), 1)
}
