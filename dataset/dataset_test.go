package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/primevalsoup/parquet-chunker/dataset"
	"github.com/primevalsoup/parquet-chunker/pqtest"
)

func TestReadFile(t *testing.T) {
	rows := pqtest.MakeRows(1000)
	path := filepath.Join(t.TempDir(), "data.parquet")
	require.NoError(t, pqtest.WriteFile(path, rows))

	ds, err := dataset.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1000, ds.NumRows())
	require.NotNil(t, ds.Schema())
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, pqtest.WriteFile(path, nil))

	ds, err := dataset.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 0, ds.NumRows())
	require.Equal(t, int64(0), ds.SizeBytes())
}

func TestReadFileMissing(t *testing.T) {
	_, err := dataset.ReadFile(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
}

func TestReadFileNotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.parquet")
	require.NoError(t, os.WriteFile(path, []byte("not a parquet file"), 0o644))

	_, err := dataset.ReadFile(path)
	require.Error(t, err)
}

func TestSizeBytesGrowsWithRows(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small.parquet")
	require.NoError(t, pqtest.WriteFile(small, pqtest.MakeRowsSized(10, 128)))
	large := filepath.Join(dir, "large.parquet")
	require.NoError(t, pqtest.WriteFile(large, pqtest.MakeRowsSized(1000, 128)))

	smallDS, err := dataset.ReadFile(small)
	require.NoError(t, err)
	largeDS, err := dataset.ReadFile(large)
	require.NoError(t, err)

	require.Greater(t, smallDS.SizeBytes(), int64(0))
	require.Greater(t, largeDS.SizeBytes(), smallDS.SizeBytes())
}

func TestSizeBytesMeasuresValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	require.NoError(t, pqtest.WriteFile(path, pqtest.MakeRowsSized(100, 512)))

	ds, err := dataset.ReadFile(path)
	require.NoError(t, err)

	// Each row carries an int64, a 512 byte label and a float64.
	require.Equal(t, int64(100*(8+512+8)), ds.SizeBytes())
}

func TestWriteFileRoundTrip(t *testing.T) {
	rows := pqtest.MakeRows(500)
	dir := t.TempDir()
	input := filepath.Join(dir, "data.parquet")
	require.NoError(t, pqtest.WriteFile(input, rows))

	ds, err := dataset.ReadFile(input)
	require.NoError(t, err)

	out := filepath.Join(dir, "slice.parquet")
	require.NoError(t, ds.WriteFile(out, ds.Slice(100, 200)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got, err := pqtest.ReadRows(data)
	require.NoError(t, err)
	require.Equal(t, rows[100:200], got)
}

func TestWriteFileEmptySlice(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.parquet")
	require.NoError(t, pqtest.WriteFile(input, pqtest.MakeRows(10)))

	ds, err := dataset.ReadFile(input)
	require.NoError(t, err)

	out := filepath.Join(dir, "empty.parquet")
	require.NoError(t, ds.WriteFile(out, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got, err := pqtest.ReadRows(data)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVerifyFooter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.parquet")
	require.NoError(t, pqtest.WriteFile(path, pqtest.MakeRows(42)))

	require.NoError(t, dataset.VerifyFooter(path, 42))

	err := dataset.VerifyFooter(path, 43)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 43")
}
