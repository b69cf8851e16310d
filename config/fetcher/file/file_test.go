package file

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(configPath, content, 0o600)
	require.NoError(t, err)

	return configPath
}

func TestFetcher_Fetch_Success(t *testing.T) {
	t.Parallel()

	content := []byte("port = 3000\n")
	configPath := writeFile(t, "config.toml", content)

	fetcher, err := New(configPath)
	require.NoError(t, err)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, configPath, fetcher.Path())
}

func TestFetcher_Fetch_FileNotFound(t *testing.T) {
	t.Parallel()

	fetcher, err := New("/nonexistent/path/config.yaml")

	require.Error(t, err)
	assert.Nil(t, fetcher)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "stat file")
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestFetcher_Fetch_EmptyFile(t *testing.T) {
	t.Parallel()

	configPath := writeFile(t, "empty.yaml", []byte{})

	fetcher, err := New(configPath)
	require.NoError(t, err)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewFetcher_ReturnsValidConstructor(t *testing.T) {
	t.Parallel()

	configPath := writeFile(t, "config.yaml", []byte("test: value"))

	constructor := NewFetcher(configPath)
	require.NotNil(t, constructor)

	fetcher, err := constructor()
	require.NoError(t, err)
	assert.Equal(t, configPath, fetcher.filepath)
}

func TestFetcher_Fetch_DirectoryPath(t *testing.T) {
	t.Parallel()

	fetcher, err := New(t.TempDir())

	require.Error(t, err)
	assert.Nil(t, fetcher)
	require.ErrorIs(t, err, ErrPathIsDirectory)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestFetcher_Fetch_FileModifiedAfterConstruction_ReturnsCachedData(t *testing.T) {
	t.Parallel()

	originalContent := []byte(`version: "1.0"`)
	configPath := writeFile(t, "config.yaml", originalContent)

	fetcher, err := New(configPath)
	require.NoError(t, err)

	err = os.WriteFile(configPath, []byte(`version: "2.0"`), 0o600)
	require.NoError(t, err)

	data, err := fetcher.Fetch()
	require.NoError(t, err)

	assert.Equal(t, originalContent, data, "Fetch should return cached data, not current file content")
}

func TestFetcher_Fetch_ReturnsCopy_MutationSafe(t *testing.T) {
	t.Parallel()

	content := []byte(`original: value`)
	configPath := writeFile(t, "config.yaml", content)

	fetcher, err := New(configPath)
	require.NoError(t, err)

	data1, err := fetcher.Fetch()
	require.NoError(t, err)

	data1[0] = 'X'

	data2, err := fetcher.Fetch()
	require.NoError(t, err)

	assert.Equal(t, content, data2, "Fetch should return unmodified cached data")
}

func TestExists(t *testing.T) {
	t.Parallel()

	configPath := writeFile(t, "config.json", []byte("{}"))

	exists, err := Exists(configPath)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = Exists(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.False(t, exists)
}
