package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadPassingTests reads the passing inputs from the JSON encoding under
// dir. A missing file yields an empty slice, not an error.
func LoadPassingTests(dir string) ([]string, error) {
	return loadRecord(filepath.Join(dir, passingJSONName))
}

// LoadFailingTests reads the failing inputs from the JSON encoding under
// dir. A missing file yields an empty slice, not an error.
func LoadFailingTests(dir string) ([]string, error) {
	return loadRecord(filepath.Join(dir, failingJSONName))
}

func loadRecord(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus record %s: %w", path, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode corpus record %s: %w", path, err)
	}
	if record.Inputs == nil {
		return []string{}, nil
	}
	return record.Inputs, nil
}

// PassingTestPaths returns the absolute paths of all passing test files in
// dir (files encoding). A missing directory yields an empty slice.
func PassingTestPaths(dir string) ([]string, error) {
	return globPaths(dir, "passing_test_*")
}

// FailingTestPaths returns the absolute paths of all failing test files in
// dir (files encoding). A missing directory yields an empty slice.
func FailingTestPaths(dir string) ([]string, error) {
	return globPaths(dir, "failing_test_*")
}

func globPaths(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, dir, err)
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		abs, err := filepath.Abs(match)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", match, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// PassingTestPathsN returns the absolute paths of the first n passing test
// files in dir, enumerated deterministically by index.
func PassingTestPathsN(dir string, n int) ([]string, error) {
	return indexedPaths(dir, "passing_test_%d", n)
}

// FailingTestPathsN returns the absolute paths of the first n failing test
// files in dir, enumerated deterministically by index.
func FailingTestPathsN(dir string, n int) ([]string, error) {
	return indexedPaths(dir, "failing_test_%d", n)
}

func indexedPaths(dir, format string, n int) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		abs, err := filepath.Abs(filepath.Join(dir, fmt.Sprintf(format, i)))
		if err != nil {
			return nil, fmt.Errorf("resolve test path %d: %w", i, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
