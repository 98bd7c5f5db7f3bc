// Package pqtest builds small parquet files for tests.
package pqtest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/parquet-go"
)

type Row struct {
	ID    int64   `parquet:"id"`
	Label string  `parquet:"label,dict"`
	Value float64 `parquet:"value"`
}

// MakeRows generates n sequential rows with small labels.
func MakeRows(n int) []Row {
	return MakeRowsSized(n, 0)
}

// MakeRowsSized generates n sequential rows whose labels are padded to
// roughly payload bytes, to inflate the in-memory size of a test dataset.
func MakeRowsSized(n, payload int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		label := fmt.Sprintf("label-%d", i%10)
		if payload > len(label) {
			label += strings.Repeat("x", payload-len(label))
		}
		rows[i] = Row{ID: int64(i), Label: label, Value: float64(i) * 1.5}
	}
	return rows
}

// WriteFile writes rows as a parquet file at path.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := parquet.NewGenericWriter[Row](f)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			f.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CreateFile builds an in-memory parquet file from row batches.
func CreateFile(parts [][]Row) (*parquet.File, error) {
	var buffer bytes.Buffer
	writer := parquet.NewGenericWriter[Row](&buffer)

	for _, part := range parts {
		if _, err := writer.Write(part); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	readBuf := bytes.NewReader(buffer.Bytes())
	return parquet.OpenFile(readBuf, int64(buffer.Len()))
}

// ReadRows reads every row back from serialized parquet bytes.
func ReadRows(data []byte) ([]Row, error) {
	return parquet.Read[Row](bytes.NewReader(data), int64(len(data)))
}
