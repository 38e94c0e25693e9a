package tui

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/taskboard/internal/board"
)

// taskValues backs the huh fields. It lives behind a pointer so the form
// keeps writing to it across the value copies Bubble Tea makes.
type taskValues struct {
	title       string
	description string
	due         string
	tags        string
	priority    board.Priority
	status      board.Status
	recurring   bool
	days        string
	hours       string
	minutes     string
}

func newTaskValues(stage board.Status) *taskValues {
	return &taskValues{
		priority: board.PriorityMedium,
		status:   stage,
		days:     "0",
		hours:    "0",
		minutes:  "0",
	}
}

func taskValuesFrom(t board.Task) *taskValues {
	v := &taskValues{
		title:       t.Title,
		description: t.Description,
		due:         formatDate(t.DueDate),
		tags:        strings.Join(t.Tags, ", "),
		priority:    t.Priority,
		status:      t.Status,
		recurring:   t.IsRecurring,
	}
	iv := board.Interval{}
	if t.RecurringInterval != nil {
		iv = board.SplitInterval(*t.RecurringInterval)
	}
	v.days = strconv.Itoa(iv.Days)
	v.hours = strconv.Itoa(iv.Hours)
	v.minutes = strconv.Itoa(iv.Minutes)
	return v
}

// interval reads the day/hour/minute inputs; unparsable parts count as 0
// and each part is clamped to its range.
func (v *taskValues) interval() *int {
	if !v.recurring {
		return nil
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return n
	}
	total := board.Interval{Days: atoi(v.days), Hours: atoi(v.hours), Minutes: atoi(v.minutes)}.TotalMinutes()
	return &total
}

func (v *taskValues) newTask() (board.NewTask, error) {
	due, err := parseDate(v.due)
	if err != nil {
		return board.NewTask{}, err
	}
	return board.NewTask{
		Title:             strings.TrimSpace(v.title),
		Description:       strings.TrimSpace(v.description),
		DueDate:           due,
		Tags:              parseTags(v.tags),
		Priority:          v.priority,
		Status:            v.status,
		IsRecurring:       v.recurring,
		RecurringInterval: v.interval(),
	}, nil
}

func (v *taskValues) patch() (board.Patch, error) {
	due, err := parseDate(v.due)
	if err != nil {
		return board.Patch{}, err
	}
	title := strings.TrimSpace(v.title)
	desc := strings.TrimSpace(v.description)
	tags := parseTags(v.tags)
	prio := v.priority
	recurring := v.recurring

	p := board.Patch{
		Title:       &title,
		Description: &desc,
		Tags:        &tags,
		Priority:    &prio,
		IsRecurring: &recurring,
	}
	if due != nil {
		p.DueDate = due
	} else {
		p.ClearDueDate = true
	}
	if iv := v.interval(); iv != nil {
		p.RecurringInterval = iv
	} else {
		p.ClearRecurringInterval = true
	}
	return p, nil
}

func requireTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validDate(s string) error {
	_, err := parseDate(s)
	return err
}

func validNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

// taskForm is the add/edit overlay. editingID is empty when adding.
type taskForm struct {
	form      *huh.Form
	values    *taskValues
	editingID string
}

func newTaskForm(values *taskValues, editingID string) taskForm {
	priorityOptions := make([]huh.Option[board.Priority], len(board.Priorities))
	for i, p := range board.Priorities {
		priorityOptions[i] = huh.NewOption(string(p), p)
	}

	fields := []huh.Field{
		huh.NewInput().Title("Title").Value(&values.title).Validate(requireTitle),
		huh.NewText().Title("Description").Value(&values.description).Lines(3),
		huh.NewInput().Title("Due date").Placeholder(dateLayout).Value(&values.due).Validate(validDate),
		huh.NewInput().Title("Tags (comma-separated)").Value(&values.tags),
		huh.NewSelect[board.Priority]().Title("Priority").Options(priorityOptions...).Value(&values.priority),
	}
	if editingID == "" {
		stageOptions := make([]huh.Option[board.Status], len(board.Stages))
		for i, s := range board.Stages {
			stageOptions[i] = huh.NewOption(stageTitles[s], s)
		}
		fields = append(fields, huh.NewSelect[board.Status]().Title("Column").Options(stageOptions...).Value(&values.status))
	}
	fields = append(fields, huh.NewConfirm().Title("Recurring?").Value(&values.recurring))

	form := huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewInput().Title("Every N days").Value(&values.days).Validate(validNumber),
			huh.NewInput().Title("Hours (0-23)").Value(&values.hours).Validate(validNumber),
			huh.NewInput().Title("Minutes (0-59)").Value(&values.minutes).Validate(validNumber),
		).WithHideFunc(func() bool { return !values.recurring }),
	).WithShowHelp(true).WithShowErrors(true)

	return taskForm{form: form, values: values, editingID: editingID}
}

func (f taskForm) title() string {
	if f.editingID == "" {
		return "New Task"
	}
	return "Edit Task"
}

func (f taskForm) init() tea.Cmd {
	return f.form.Init()
}

// update forwards msg to the form and reports whether it finished.
func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd, bool) {
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	return f, cmd, f.form.State == huh.StateCompleted
}

// submit applies the form to the store.
func (f taskForm) submit(s *board.Store) (string, error) {
	if f.editingID == "" {
		in, err := f.values.newTask()
		if err != nil {
			return "", err
		}
		t, err := s.Add(in)
		if err != nil {
			return "", err
		}
		return "Added " + t.Title, nil
	}

	p, err := f.values.patch()
	if err != nil {
		return "", err
	}
	if err := s.Update(f.editingID, p); err != nil {
		return "", err
	}
	return "Updated " + *p.Title, nil
}
