package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaverRejectsUnknownMethod(t *testing.T) {
	_, err := NewSaver("xml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid saving method")
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(MethodJSON, false)
	require.NoError(t, err)

	passing := []string{"x := 1", "y := 2", `{"nested": "json"}`}
	failing := []string{"panic()", "x := 1"}
	require.NoError(t, saver.Save(dir, passing, failing))

	gotPassing, err := LoadPassingTests(dir)
	require.NoError(t, err)
	gotFailing, err := LoadFailingTests(dir)
	require.NoError(t, err)

	// Exact content, exact order.
	assert.Equal(t, passing, gotPassing)
	assert.Equal(t, failing, gotFailing)
}

func TestJSONSaveRewritesFile(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(MethodJSON, false)
	require.NoError(t, err)

	require.NoError(t, saver.Save(dir, []string{"first"}, nil))
	require.NoError(t, saver.Save(dir, []string{"second"}, nil))

	got, err := LoadPassingTests(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, got)
}

func TestJSONLoadMissingFileReturnsEmpty(t *testing.T) {
	got, err := LoadFailingTests(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilesSaverLayout(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(MethodFiles, false)
	require.NoError(t, err)

	require.NoError(t, saver.Save(dir, []string{"pass-a", "pass-b"}, []string{"fail-a"}))

	data, err := os.ReadFile(filepath.Join(dir, "passing_test_0"))
	require.NoError(t, err)
	assert.Equal(t, "pass-a", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "passing_test_1"))
	require.NoError(t, err)
	assert.Equal(t, "pass-b", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "failing_test_0"))
	require.NoError(t, err)
	assert.Equal(t, "fail-a", string(data))
}

func TestFilesSaverOverwriteClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "passing_test_7")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	saver, err := NewSaver(MethodFiles, true)
	require.NoError(t, err)
	require.NoError(t, saver.Save(dir, []string{"fresh"}, nil))

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	paths, err := PassingTestPaths(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestFilesSaverAppendKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "failing_test_9")
	require.NoError(t, os.WriteFile(stale, []byte("kept"), 0644))

	saver, err := NewSaver(MethodFiles, false)
	require.NoError(t, err)
	require.NoError(t, saver.Save(dir, nil, []string{"new"}))

	paths, err := FailingTestPaths(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestTestPathsMissingDirectory(t *testing.T) {
	paths, err := FailingTestPaths(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestTestPathsN(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(MethodFiles, false)
	require.NoError(t, err)
	require.NoError(t, saver.Save(dir, []string{"a", "b", "c"}, nil))

	paths, err := PassingTestPathsN(dir, 2)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, filepath.IsAbs(paths[0]))
	assert.Equal(t, "passing_test_0", filepath.Base(paths[0]))
	assert.Equal(t, "passing_test_1", filepath.Base(paths[1]))
}

func TestFormulaStoreRoundTrip(t *testing.T) {
	fs := NewFormulaStore(t.TempDir())

	path, err := fs.Save("failure-1", `exists <digit> in start: <digit> > "5"`)
	require.NoError(t, err)
	assert.Equal(t, "failure-1", filepath.Base(path))

	text, found, err := fs.Load("failure-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `exists <digit> in start: <digit> > "5"`, text)
}

func TestFormulaStoreLoadMissing(t *testing.T) {
	fs := NewFormulaStore(t.TempDir())

	text, found, err := fs.Load("absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, text)
}
