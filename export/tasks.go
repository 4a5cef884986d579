package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinayprograms/taskhut/annotation"
)

// ReadTasks loads a task data source from a jsonl, ndjson, or json file:
// one object per line, or a single array of objects. Used to build a tool
// from configuration.
func ReadTasks(path string) ([]annotation.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var tasks []annotation.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return tasks, nil
	case ".jsonl", ".ndjson":
		var tasks []annotation.Task
		for i, line := range splitLines(data) {
			var task annotation.Task
			if err := json.Unmarshal(line, &task); err != nil {
				return nil, fmt.Errorf("decode %s line %d: %w", path, i+1, err)
			}
			tasks = append(tasks, task)
		}
		return tasks, nil
	default:
		return nil, fmt.Errorf("%w: task source %q (supported: .jsonl, .ndjson, .json)",
			ErrUnsupportedFormat, filepath.Ext(path))
	}
}
