package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string
	Terms []string
	IDF   []float64
}

func TestSaveAndLoadGob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "model.gob")
	in := sample{Name: "model", Terms: []string{"python", "sql"}, IDF: []float64{1.5, 1.2}}

	require.NoError(t, SaveGob(path, in))

	var out sample
	require.NoError(t, LoadGob(path, &out))
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestSaveGob_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, SaveGob(path, sample{Name: "first"}))
	require.NoError(t, SaveGob(path, sample{Name: "second"}))

	var out sample
	require.NoError(t, LoadGob(path, &out))
	assert.Equal(t, "second", out.Name)
}

func TestLoadGob_Missing(t *testing.T) {
	var out sample
	err := LoadGob(filepath.Join(t.TempDir(), "missing.gob"), &out)
	assert.Equal(t, os.ErrNotExist, err)
}

func TestLoadGob_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	require.NoError(t, os.WriteFile(path, []byte("not gob data"), 0o600))

	var out sample
	err := LoadGob(path, &out)
	require.Error(t, err)
	assert.NotEqual(t, os.ErrNotExist, err)
}

func TestEncodeDecodeGob(t *testing.T) {
	in := sample{Name: "bytes", Terms: []string{"go"}}
	data, err := EncodeGob(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, DecodeGob(data, &out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Terms, out.Terms)

	assert.Error(t, DecodeGob([]byte{0x01, 0x02}, &out))
}
