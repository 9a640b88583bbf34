package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.scp")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestMapping_OpenReadClose(t *testing.T) {
	content := []byte("SCP flux capture")
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "flux", string(buf))

	// Past the end.
	n, err = m.ReadAt(buf, 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	// Short read over the tail.
	big := make([]byte, 32)
	n, err = m.ReadAt(big, 8)
	assert.Equal(t, len(content)-8, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "flux capture", string(big[:n]))

	n, err = m.ReadAt(buf, -1)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMapping_EmptyFile(t *testing.T) {
	m, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())

	buf := make([]byte, 1)
	n, err := m.ReadAt(buf, 0)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestMapping_CloseIdempotent(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("x")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())

	buf := make([]byte, 1)
	_, err = m.ReadAt(buf, 0)
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
}

func TestMapping_Advise(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("advise target")))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Advise(AccessRandom))
	require.NoError(t, m.Advise(AccessDefault))
}

func TestMapping_OpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.scp"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
