package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/view"
)

type boardModel struct {
	store  *board.Store
	now    func() time.Time
	width  int
	height int

	snap    board.Snapshot
	columns map[board.Status][]board.Task
	col     int
	rows    [3]int
	follow  string // task id the cursor should land on after the next load

	confirmDelete bool
	deleteID      string
	deleteTitle   string

	searching bool
	search    textinput.Model

	formActive bool
	form       taskForm

	filterActive bool
	filter       filterForm
}

func newBoardModel(s *board.Store) boardModel {
	ti := textinput.New()
	ti.Placeholder = "title, description or tag"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	return boardModel{
		store:   s,
		now:     time.Now,
		search:  ti,
		columns: map[board.Status][]board.Task{},
	}
}

func (b *boardModel) setSize(w, h int) {
	b.width = w
	b.height = h
	b.search.Width = max(10, w/3)
}

type boardDataMsg struct {
	snap board.Snapshot
}

func (b boardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return boardDataMsg{snap: b.store.Snapshot()}
	}
}

// capturing reports whether an overlay owns keyboard input.
func (b boardModel) capturing() bool {
	return b.formActive || b.filterActive || b.searching || b.confirmDelete
}

func (b boardModel) stage() board.Status {
	return board.Stages[b.col]
}

func (b boardModel) selected() (board.Task, bool) {
	tasks := b.columns[b.stage()]
	r := b.rows[b.col]
	if r < 0 || r >= len(tasks) {
		return board.Task{}, false
	}
	return tasks[r], true
}

func (b *boardModel) load(snap board.Snapshot) {
	b.snap = snap
	b.columns = view.Columns(snap)

	if b.follow != "" {
		for ci, st := range board.Stages {
			if i := slices.IndexFunc(b.columns[st], func(t board.Task) bool { return t.ID == b.follow }); i >= 0 {
				b.col, b.rows[ci] = ci, i
				break
			}
		}
		b.follow = ""
	}
	for ci, st := range board.Stages {
		n := len(b.columns[st])
		if b.rows[ci] >= n {
			b.rows[ci] = max(0, n-1)
		}
	}
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isErr} }
}

func (b boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch {
	case b.formActive:
		return b.updateForm(msg)
	case b.filterActive:
		return b.updateFilter(msg)
	case b.searching:
		return b.updateSearch(msg)
	}

	switch msg := msg.(type) {
	case boardDataMsg:
		b.load(msg.snap)
		return b, nil

	case tea.KeyMsg:
		if b.confirmDelete {
			return b.updateConfirm(msg)
		}
		return b.updateKeys(msg)
	}
	return b, nil
}

func (b boardModel) updateKeys(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if b.rows[b.col] > 0 {
			b.rows[b.col]--
		}
	case key.Matches(msg, keys.Down):
		if b.rows[b.col] < len(b.columns[b.stage()])-1 {
			b.rows[b.col]++
		}
	case key.Matches(msg, keys.Left):
		if b.col > 0 {
			b.col--
		}
	case key.Matches(msg, keys.Right):
		if b.col < len(board.Stages)-1 {
			b.col++
		}

	case key.Matches(msg, keys.MoveLeft), key.Matches(msg, keys.MoveRight):
		t, ok := b.selected()
		if !ok {
			return b, nil
		}
		target := b.col - 1
		if key.Matches(msg, keys.MoveRight) {
			target = b.col + 1
		}
		if target < 0 || target >= len(board.Stages) {
			return b, nil
		}
		if err := b.store.Move(t.ID, board.Stages[target]); err != nil {
			return b, statusCmd(err.Error(), true)
		}
		b.follow = t.ID
		return b, b.refresh()

	case key.Matches(msg, keys.Complete):
		t, ok := b.selected()
		if !ok {
			return b, nil
		}
		b.follow = t.ID
		if t.Completed() {
			b.store.Uncomplete(t.ID)
			return b, tea.Batch(b.refresh(), statusCmd("Reopened "+t.Title, false))
		}
		b.store.Complete(t.ID)
		text := "Completed " + t.Title
		if !t.IsRecurring {
			text += fmt.Sprintf(" (deletes in %s)", formatCountdown(board.AutoDeleteDelay))
		}
		return b, tea.Batch(b.refresh(), statusCmd(text, false))

	case key.Matches(msg, keys.Delete):
		if t, ok := b.selected(); ok {
			b.confirmDelete = true
			b.deleteID, b.deleteTitle = t.ID, t.Title
		}

	case key.Matches(msg, keys.New):
		b.form = newTaskForm(newTaskValues(b.stage()), "")
		b.formActive = true
		return b, b.form.init()

	case key.Matches(msg, keys.Edit):
		if t, ok := b.selected(); ok {
			b.form = newTaskForm(taskValuesFrom(t), t.ID)
			b.formActive = true
			return b, b.form.init()
		}

	case key.Matches(msg, keys.Search):
		b.searching = true
		b.search.SetValue(b.snap.Filters.Search)
		b.search.CursorEnd()
		cmd := b.search.Focus()
		return b, cmd

	case key.Matches(msg, keys.Filter):
		b.filter = newFilterForm(filterValuesFrom(b.snap.Filters), b.store.Tags())
		b.filterActive = true
		return b, b.filter.init()

	case key.Matches(msg, keys.ClearFilter):
		empty, tags := "", []string{}
		b.store.SetFilters(board.FilterPatch{
			Search:        &empty,
			Tags:          &tags,
			DateRange:     &board.DateRange{},
			ClearPriority: true,
		})
		return b, tea.Batch(b.refresh(), statusCmd("Filters cleared", false))

	case key.Matches(msg, keys.Sort):
		i := slices.Index(board.SortFields, b.snap.Sort.Field)
		next := board.SortFields[(i+1)%len(board.SortFields)]
		if err := b.store.SetSort(board.SortPatch{Field: &next}); err != nil {
			return b, statusCmd(err.Error(), true)
		}
		return b, b.refresh()

	case key.Matches(msg, keys.Direction):
		dir := board.Asc
		if b.snap.Sort.Direction == board.Asc {
			dir = board.Desc
		}
		if err := b.store.SetSort(board.SortPatch{Direction: &dir}); err != nil {
			return b, statusCmd(err.Error(), true)
		}
		return b, b.refresh()
	}
	return b, nil
}

func (b boardModel) updateConfirm(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	b.confirmDelete = false
	if key.Matches(msg, keys.Confirm) {
		b.store.Delete(b.deleteID)
		return b, tea.Batch(b.refresh(), statusCmd("Deleted "+b.deleteTitle, false))
	}
	return b, nil
}

func (b boardModel) updateSearch(msg tea.Msg) (boardModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Back):
			empty := ""
			b.store.SetFilters(board.FilterPatch{Search: &empty})
			b.search.SetValue("")
			b.search.Blur()
			b.searching = false
			return b, b.refresh()
		case key.Matches(km, keys.Enter):
			b.search.Blur()
			b.searching = false
			return b, nil
		}
	}
	if data, ok := msg.(boardDataMsg); ok {
		b.load(data.snap)
		return b, nil
	}

	var cmd tea.Cmd
	prev := b.search.Value()
	b.search, cmd = b.search.Update(msg)
	if v := b.search.Value(); v != prev {
		b.store.SetFilters(board.FilterPatch{Search: &v})
		return b, tea.Batch(cmd, b.refresh())
	}
	return b, cmd
}

func (b boardModel) updateForm(msg tea.Msg) (boardModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		b.formActive = false
		return b, nil
	}
	if data, ok := msg.(boardDataMsg); ok {
		b.load(data.snap)
		return b, nil
	}

	var (
		cmd  tea.Cmd
		done bool
	)
	b.form, cmd, done = b.form.update(msg)
	if !done {
		return b, cmd
	}

	b.formActive = false
	text, err := b.form.submit(b.store)
	if err != nil {
		return b, statusCmd(err.Error(), true)
	}
	b.follow = b.form.editingID
	return b, tea.Batch(b.refresh(), statusCmd(text, false))
}

func (b boardModel) updateFilter(msg tea.Msg) (boardModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		b.filterActive = false
		return b, nil
	}
	if data, ok := msg.(boardDataMsg); ok {
		b.load(data.snap)
		return b, nil
	}

	var (
		cmd  tea.Cmd
		done bool
	)
	b.filter, cmd, done = b.filter.update(msg)
	if !done {
		return b, cmd
	}

	b.filterActive = false
	p, err := b.filter.values.patch()
	if err != nil {
		return b, statusCmd(err.Error(), true)
	}
	b.store.SetFilters(p)
	return b, tea.Batch(b.refresh(), statusCmd("Filters applied", false))
}

func (b boardModel) view() string {
	switch {
	case b.formActive:
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(b.form.title()), "", b.form.form.View())
		return panelStyle.Width(b.width - 4).Render(content)
	case b.filterActive:
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Filters"), "", b.filter.form.View())
		return panelStyle.Width(b.width - 4).Render(content)
	}

	top := b.renderToolbar()
	colWidth := max(16, (b.width-2)/len(board.Stages)-2)
	colHeight := max(4, b.height-lipgloss.Height(top)-2)

	cols := make([]string, len(board.Stages))
	for i, st := range board.Stages {
		cols[i] = b.renderColumn(i, st, colWidth, colHeight)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if b.confirmDelete {
		prompt := warningStyle.Render(fmt.Sprintf("Delete %q? ", b.deleteTitle)) + mutedStyle.Render("y: yes  any key: cancel")
		return lipgloss.JoinVertical(lipgloss.Left, top, body, prompt)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

func (b boardModel) renderToolbar() string {
	sort := mutedStyle.Render(fmt.Sprintf("sort: %s %s", b.snap.Sort.Field, b.snap.Sort.Direction))
	var left string
	if b.searching {
		left = b.search.View()
	} else if desc := describeFilters(b.snap.Filters); desc != "" {
		left = highlightStyle.Render(desc)
	} else {
		left = mutedStyle.Render("no filters")
	}
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(sort)-2)
	return " " + left + strings.Repeat(" ", gap) + sort
}

func (b boardModel) renderColumn(ci int, st board.Status, w, h int) string {
	tasks := b.columns[st]
	active := ci == b.col

	title := titleStyle.Render(fmt.Sprintf("%s (%d)", stageTitles[st], len(tasks)))
	rows := []string{title, ""}

	perCard := 2
	visible := max(1, (h-4)/perCard)
	start := 0
	if active && b.rows[ci] >= visible {
		start = b.rows[ci] - visible + 1
	}

	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("empty"))
	}
	for i := start; i < len(tasks) && i < start+visible; i++ {
		rows = append(rows, b.renderCard(tasks[i], active && i == b.rows[ci], w-2)...)
	}
	if hidden := len(tasks) - start - visible; hidden > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("+%d more", hidden)))
	}

	style := columnStyle
	if active {
		style = activeColumnStyle
	}
	return style.Width(w).Height(h).Render(strings.Join(rows, "\n"))
}

func (b boardModel) renderCard(t board.Task, selected bool, w int) []string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	if t.Completed() && !selected {
		style = doneItemStyle
	}
	dot := priorityStyle(t.Priority).Render("●")
	line := cursor + dot + " " + style.Render(truncate(t.Title, w-4))

	var meta []string
	if t.DueDate != nil {
		due := "due " + formatDate(t.DueDate)
		if !t.Completed() && view.EndOfDay(*t.DueDate).Before(b.now()) {
			due += "!"
		}
		meta = append(meta, due)
	}
	if t.IsRecurring {
		every := "↻"
		if t.RecurringInterval != nil {
			every += " " + board.SplitInterval(*t.RecurringInterval).String()
		}
		meta = append(meta, every)
	}
	if len(t.Tags) > 0 {
		meta = append(meta, "#"+strings.Join(t.Tags, " #"))
	}

	second := "    "
	room := w - 4
	if at, ok := b.store.DeletesAt(t.ID); ok {
		cd := "deletes in " + formatCountdown(at.Sub(b.now()))
		second += countdownStyle.Render(cd) + " "
		room -= len(cd) + 1
	}
	second += mutedStyle.Render(truncate(strings.Join(meta, " · "), room))
	return []string{line, second}
}
