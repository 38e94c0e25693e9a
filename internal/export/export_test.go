package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/taskboard/internal/board"
)

func sampleData() []board.Task {
	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)
	done := now
	interval := 24*60 + 30

	return []board.Task{
		{
			ID:          "a1",
			Title:       "Write report",
			Description: "first draft",
			Priority:    board.PriorityHigh,
			Status:      board.StatusTodo,
			Tags:        []string{"docs", "q2"},
			DueDate:     &due,
			CreatedAt:   now.Add(-time.Hour),
		},
		{
			ID:                "b2",
			Title:             "Standup",
			Priority:          board.PriorityLow,
			Status:            board.StatusDone,
			Tags:              []string{},
			IsRecurring:       true,
			RecurringInterval: &interval,
			CreatedAt:         now.Add(-2 * time.Hour),
			CompletedAt:       &done,
		},
		{
			ID:        "c3",
			Title:     "Review",
			Priority:  board.PriorityMedium,
			Status:    board.StatusInProgress,
			CreatedAt: now,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "a1" || row[1] != "Write report" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[5] != "docs;q2" {
		t.Fatalf("Tags = %q, want docs;q2", row[5])
	}
	if row[6] == "" {
		t.Fatal("Due should be set")
	}
	if row[10] != "" {
		t.Fatalf("Completed should be empty, got %q", row[10])
	}

	recurring := records[2]
	if recurring[7] != "true" || recurring[8] != "1d 0h 30m" {
		t.Fatalf("recurring columns = %q %q", recurring[7], recurring[8])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	tasks := []board.Task{{
		ID:          "x",
		Title:       `Task "Special"`,
		Description: `notes with "quotes" and, commas`,
		Priority:    board.PriorityLow,
		Status:      board.StatusTodo,
		CreatedAt:   time.Now(),
	}}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := ToCSV(tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][1] != `Task "Special"` {
		t.Fatalf("title mangled: %q", records[1][1])
	}
	if records[1][2] != `notes with "quotes" and, commas` {
		t.Fatalf("description mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result document
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Count != 3 || len(result.Tasks) != 3 {
		t.Fatalf("count = %d, tasks = %d, want 3", result.Count, len(result.Tasks))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	e := result.Tasks[1]
	if e.ID != "b2" || !e.Recurring {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.IntervalMinutes == nil || *e.IntervalMinutes != 24*60+30 {
		t.Fatalf("interval_minutes = %v", e.IntervalMinutes)
	}
	if e.CompletedAt == "" {
		t.Fatal("completed_at should be set")
	}
	for _, e := range result.Tasks {
		if _, err := time.Parse(time.RFC3339, e.CreatedAt); err != nil {
			t.Fatalf("created_at is not valid RFC3339: %q", e.CreatedAt)
		}
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"tasks": []`) {
		t.Fatalf("empty export should carry an empty task list, got %s", data)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// YAML
// ============================================================

func TestToYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := ToYAML(sampleData(), path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result document
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if got := result.Tasks[0].Tags; len(got) != 2 || got[0] != "docs" {
		t.Fatalf("tags = %v", got)
	}
}

// ============================================================
// Dispatch
// ============================================================

func TestWriteDispatch(t *testing.T) {
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, "out."+string(f))
		if err := Write(f, sampleData(), path); err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("Write(%s) produced no file: %v", f, err)
		}
	}

	if err := Write("xml", nil, filepath.Join(dir, "out.xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
