package corpus

import (
	"fmt"
	"os"
	"path/filepath"
)

// FormulaStore persists solved constraint formulas as human-readable text
// under <root>/formulas/<identifier>.
type FormulaStore struct {
	root string
}

// NewFormulaStore creates a formula store rooted at dir.
func NewFormulaStore(dir string) *FormulaStore {
	return &FormulaStore{root: dir}
}

func (fs *FormulaStore) path(identifier string) string {
	return filepath.Join(fs.root, "formulas", identifier)
}

// Save writes the unparsed formula text under the named slot and returns
// the file path.
func (fs *FormulaStore) Save(identifier, text string) (string, error) {
	dir := filepath.Join(fs.root, "formulas")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create formula directory %s: %w", dir, err)
	}
	path := fs.path(identifier)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write formula %s: %w", identifier, err)
	}
	return path, nil
}

// Load returns the raw formula text for the named slot. A missing formula
// reports found=false without an error.
func (fs *FormulaStore) Load(identifier string) (text string, found bool, err error) {
	data, err := os.ReadFile(fs.path(identifier))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read formula %s: %w", identifier, err)
	}
	return string(data), true, nil
}
