package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/taskboard/internal/board"
)

const anyPriority = "any"

type filterValues struct {
	tags     []string
	priority string
	from     string
	to       string
}

func filterValuesFrom(f board.Filters) *filterValues {
	v := &filterValues{
		tags:     append([]string{}, f.Tags...),
		priority: anyPriority,
		from:     formatDate(f.DateRange.Start),
		to:       formatDate(f.DateRange.End),
	}
	if f.Priority != nil {
		v.priority = string(*f.Priority)
	}
	return v
}

// patch converts the form values into a full replacement of everything
// except the search text.
func (v *filterValues) patch() (board.FilterPatch, error) {
	start, err := parseDate(v.from)
	if err != nil {
		return board.FilterPatch{}, err
	}
	end, err := parseDate(v.to)
	if err != nil {
		return board.FilterPatch{}, err
	}
	tags := append([]string{}, v.tags...)
	p := board.FilterPatch{
		Tags:      &tags,
		DateRange: &board.DateRange{Start: start, End: end},
	}
	if v.priority == anyPriority {
		p.ClearPriority = true
	} else {
		prio := board.Priority(v.priority)
		p.Priority = &prio
	}
	return p, nil
}

type filterForm struct {
	form   *huh.Form
	values *filterValues
}

// newFilterForm offers the tags currently on the board plus any tag
// already selected, so a stale selection can still be removed.
func newFilterForm(values *filterValues, known []string) filterForm {
	tagOptions := make([]huh.Option[string], 0, len(known)+len(values.tags))
	seen := make(map[string]bool)
	for _, t := range append(append([]string{}, known...), values.tags...) {
		if seen[t] {
			continue
		}
		seen[t] = true
		tagOptions = append(tagOptions, huh.NewOption(t, t))
	}

	priorityOptions := []huh.Option[string]{huh.NewOption("Any", anyPriority)}
	for _, p := range board.Priorities {
		priorityOptions = append(priorityOptions, huh.NewOption(strings.ToUpper(string(p[:1]))+string(p[1:]), string(p)))
	}

	var fields []huh.Field
	if len(tagOptions) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Tags (any of)").
			Options(tagOptions...).
			Value(&values.tags))
	} else {
		fields = append(fields, huh.NewNote().Title("Tags").Description("No tags on the board yet."))
	}
	fields = append(fields,
		huh.NewSelect[string]().Title("Priority").Options(priorityOptions...).Value(&values.priority),
		huh.NewInput().Title("Due from").Placeholder(dateLayout).Value(&values.from).Validate(validDate),
		huh.NewInput().Title("Due to").Placeholder(dateLayout).Value(&values.to).Validate(validDate),
	)

	form := huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	return filterForm{form: form, values: values}
}

func (f filterForm) init() tea.Cmd {
	return f.form.Init()
}

func (f filterForm) update(msg tea.Msg) (filterForm, tea.Cmd, bool) {
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	return f, cmd, f.form.State == huh.StateCompleted
}

// describeFilters summarises the active filters for the board header.
func describeFilters(f board.Filters) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, "search:"+f.Search)
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags:"+strings.Join(f.Tags, "|"))
	}
	if f.Priority != nil {
		parts = append(parts, "priority:"+string(*f.Priority))
	}
	if !f.DateRange.IsZero() {
		from, to := formatDate(f.DateRange.Start), formatDate(f.DateRange.End)
		if from == "" {
			from = "…"
		}
		if to == "" {
			to = "…"
		}
		parts = append(parts, "due:"+from+".."+to)
	}
	return strings.Join(parts, "  ")
}
