package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/export"
	"github.com/sadopc/taskboard/internal/view"
)

func parseStage(s string) (board.Status, error) {
	st := board.Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown stage %q (want todo, in-progress or done)", s)
	}
	return st, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		stage string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print board columns with the saved filters and sort applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages := board.Stages
			if stage != "" {
				st, err := parseStage(stage)
				if err != nil {
					return err
				}
				stages = []board.Status{st}
			}

			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap := sess.board.Snapshot()
			if all {
				snap.Filters = board.Filters{Tags: []string{}}
			}

			out := cmd.OutOrStdout()
			for i, st := range stages {
				if i > 0 {
					fmt.Fprintln(out)
				}
				tasks := view.Derive(snap.Tasks, snap.Filters, snap.Sort, st)
				fmt.Fprintf(out, "%s (%d)\n", st, len(tasks))
				if len(tasks) == 0 {
					fmt.Fprintln(out, "  no tasks")
					continue
				}
				fmt.Fprintln(out, renderTasks(tasks))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&stage, "stage", "s", "", "only this stage: todo, in-progress or done")
	cmd.Flags().BoolVar(&all, "all", false, "ignore the saved filters")
	return cmd
}

func renderTasks(tasks []board.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
		}
		every := ""
		if t.IsRecurring {
			every = "yes"
			if t.RecurringInterval != nil {
				every = board.SplitInterval(*t.RecurringInterval).String()
			}
		}
		rows = append(rows, []string{t.ID, t.Title, string(t.Priority), due, strings.Join(t.Tags, ","), every})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "PRIORITY", "DUE", "TAGS", "RECURS").
		Rows(rows...).
		String()
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		desc      string
		priority  string
		stage     string
		tags      []string
		due       string
		recurring bool
		interval  board.Interval
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := board.NewTask{
				Title:       strings.Join(args, " "),
				Description: desc,
				Tags:        tags,
				Priority:    board.Priority(strings.ToLower(priority)),
				IsRecurring: recurring,
			}
			if stage != "" {
				st, err := parseStage(stage)
				if err != nil {
					return err
				}
				in.Status = st
			}
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q: use YYYY-MM-DD", due)
				}
				in.DueDate = &d
			}
			if recurring {
				total := interval.TotalMinutes()
				in.RecurringInterval = &total
			}

			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			t, err := sess.board.Add(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q to %s\n", t.ID, t.Title, t.Status)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&desc, "description", "d", "", "task description")
	f.StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	f.StringVar(&stage, "stage", "", "todo, in-progress or done (default todo)")
	f.StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags")
	f.StringVar(&due, "due", "", "due date as YYYY-MM-DD")
	f.BoolVarP(&recurring, "recurring", "r", false, "mark the task as recurring")
	f.IntVar(&interval.Days, "every-days", 0, "recurring interval days")
	f.IntVar(&interval.Hours, "every-hours", 0, "recurring interval hours (0-23)")
	f.IntVar(&interval.Minutes, "every-minutes", 0, "recurring interval minutes (0-59)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		out      string
		filtered bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks to a CSV, JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.Format(strings.ToLower(format))
			if out == "" {
				out = fmt.Sprintf("taskboard-export-%s.%s", time.Now().Format("2006-01-02"), f)
			}

			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap := sess.board.Snapshot()
			tasks := snap.Tasks
			if filtered {
				tasks = nil
				cols := view.Columns(snap)
				for _, st := range board.Stages {
					tasks = append(tasks, cols[st]...)
				}
			}

			if err := export.Write(f, tasks, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default taskboard-export-<date>.<format>)")
	cmd.Flags().BoolVar(&filtered, "filtered", false, "export only tasks matching the saved filters")
	return cmd
}
