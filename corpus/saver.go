package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Saving method names accepted by NewSaver.
const (
	MethodFiles = "files"
	MethodJSON  = "json"
)

// On-disk names used by the JSON encoding.
const (
	passingJSONName = "passing_tests.json"
	failingJSONName = "failing_tests.json"
)

// Saver writes the passing and failing buckets under a target directory.
type Saver interface {
	Save(dir string, passing, failing []string) error
}

// NewSaver selects an encoding by name. An unknown method is a configuration
// error and fails at construction.
func NewSaver(method string, overwrite bool) (Saver, error) {
	switch method {
	case MethodFiles:
		return &FilesSaver{Overwrite: overwrite}, nil
	case MethodJSON:
		return &JSONSaver{Overwrite: overwrite}, nil
	default:
		return nil, fmt.Errorf("invalid saving method %q: use %q or %q", method, MethodFiles, MethodJSON)
	}
}

// FilesSaver writes each input as its own UTF-8 text file, named
// passing_test_<i> / failing_test_<i> in bucket order with no trailing
// metadata. When Overwrite is set the directory is cleared first.
type FilesSaver struct {
	Overwrite bool
}

func (s *FilesSaver) Save(dir string, passing, failing []string) error {
	if err := prepareDir(dir, s.Overwrite); err != nil {
		return err
	}
	for idx, input := range passing {
		path := filepath.Join(dir, fmt.Sprintf("passing_test_%d", idx))
		if err := os.WriteFile(path, []byte(input), 0644); err != nil {
			return fmt.Errorf("write passing test %d: %w", idx, err)
		}
	}
	for idx, input := range failing {
		path := filepath.Join(dir, fmt.Sprintf("failing_test_%d", idx))
		if err := os.WriteFile(path, []byte(input), 0644); err != nil {
			return fmt.Errorf("write failing test %d: %w", idx, err)
		}
	}
	return nil
}

// Record is the JSON encoding of one bucket.
type Record struct {
	Length int      `json:"length"`
	Inputs []string `json:"inputs"`
}

// JSONSaver writes one record per bucket. Each save fully rewrites the
// target files; there is no incremental merge on disk.
type JSONSaver struct {
	Overwrite bool
}

func (s *JSONSaver) Save(dir string, passing, failing []string) error {
	if err := prepareDir(dir, s.Overwrite); err != nil {
		return err
	}
	if err := writeRecord(filepath.Join(dir, failingJSONName), failing); err != nil {
		return err
	}
	return writeRecord(filepath.Join(dir, passingJSONName), passing)
}

func writeRecord(path string, inputs []string) error {
	if inputs == nil {
		inputs = []string{}
	}
	data, err := json.Marshal(Record{Length: len(inputs), Inputs: inputs})
	if err != nil {
		return fmt.Errorf("encode corpus record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write corpus record %s: %w", path, err)
	}
	return nil
}

func prepareDir(dir string, overwrite bool) error {
	if overwrite {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear corpus directory %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create corpus directory %s: %w", dir, err)
	}
	return nil
}
