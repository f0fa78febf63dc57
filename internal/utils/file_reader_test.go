package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: {}\n"), 0644))

	reader := NewFileReader()
	data, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "services: {}\n", string(data))
	assert.Equal(t, 1, reader.Cached())

	require.NoError(t, os.WriteFile(path, []byte("parameters: {}\n"), 0644))
	data, err = reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "parameters: {}\n", string(data))

	reader.Invalidate(path)
	assert.Equal(t, 0, reader.Cached())
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ReadFile("")
	assert.Error(t, err)

	_, err = reader.ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.yaml")
}
