package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/taskboard/internal/board"
)

func ToYAML(tasks []board.Task, path string) error {
	data, err := yaml.Marshal(buildDocument(tasks))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// Write dispatches to the writer for format.
func Write(format Format, tasks []board.Task, path string) error {
	switch format {
	case FormatCSV:
		return ToCSV(tasks, path)
	case FormatJSON:
		return ToJSON(tasks, path)
	case FormatYAML:
		return ToYAML(tasks, path)
	}
	return fmt.Errorf("unknown export format %q", format)
}
