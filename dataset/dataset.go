// Package dataset loads a parquet file fully into memory and serializes
// contiguous row ranges back to parquet files.
package dataset

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/segmentio/parquet-go"
)

const readBatchSize = 4 * 1024

// Dataset is the fully loaded content of a parquet file: the file schema
// and every row, in file order.
type Dataset struct {
	schema *parquet.Schema
	rows   []parquet.Row
}

func New(schema *parquet.Schema, rows []parquet.Row) *Dataset {
	return &Dataset{schema: schema, rows: rows}
}

// ReadFile loads an entire parquet file into memory.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input file")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "reading input file stats")
	}
	pqFile, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "opening parquet file %s", path)
	}

	rows := make([]parquet.Row, 0, pqFile.NumRows())
	for _, rowGroup := range pqFile.RowGroups() {
		groupRows := rowGroup.Rows()
		batch := make([]parquet.Row, readBatchSize)
		for {
			n, err := groupRows.ReadRows(batch)
			for _, row := range batch[:n] {
				rows = append(rows, row.Clone())
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				groupRows.Close()
				return nil, errors.Wrapf(err, "reading rows from %s", path)
			}
			if n == 0 {
				break
			}
		}
		if err := groupRows.Close(); err != nil {
			return nil, errors.Wrapf(err, "closing row reader for %s", path)
		}
	}

	return &Dataset{schema: pqFile.Schema(), rows: rows}, nil
}

func (d *Dataset) NumRows() int { return len(d.rows) }

func (d *Dataset) Schema() *parquet.Schema { return d.schema }

func (d *Dataset) Rows() []parquet.Row { return d.rows }

// Slice returns the rows in [start, end), sharing the backing array.
func (d *Dataset) Slice(start, end int) []parquet.Row {
	return d.rows[start:end]
}

// SizeBytes estimates the in-memory footprint of the dataset. Each value is
// charged the width of its physical type, so the estimate tracks the live
// representation rather than the encoded file size.
func (d *Dataset) SizeBytes() int64 {
	var total int64
	for _, row := range d.rows {
		for _, value := range row {
			total += valueSize(value)
		}
	}
	return total
}

func valueSize(v parquet.Value) int64 {
	if v.IsNull() {
		return 0
	}
	switch v.Kind() {
	case parquet.Boolean:
		return 1
	case parquet.Int32, parquet.Float:
		return 4
	case parquet.Int64, parquet.Double:
		return 8
	case parquet.Int96:
		return 12
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return int64(len(v.ByteArray()))
	default:
		return 0
	}
}

// WriteFile serializes rows to a parquet file at path using the dataset
// schema. A zero-row slice still produces a valid file carrying the schema.
func (d *Dataset) WriteFile(path string, rows []parquet.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating chunk file %s", path)
	}

	writer := parquet.NewGenericWriter[any](f, d.schema)
	if len(rows) > 0 {
		if _, err := writer.WriteRows(rows); err != nil {
			f.Close()
			return errors.Wrapf(err, "writing rows to %s", path)
		}
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "closing writer for %s", path)
	}
	return f.Close()
}
