package dataset

import (
	"os"

	"github.com/apache/arrow/go/v10/parquet/file"
	"github.com/pkg/errors"
)

// VerifyFooter opens a written parquet file and checks that the row count
// recorded in its footer matches the number of rows serialized into it.
func VerifyFooter(path string, wantRows int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening chunk file %s", path)
	}

	reader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "reading footer of %s", path)
	}
	defer reader.Close()

	if got := reader.NumRows(); got != int64(wantRows) {
		return errors.Errorf("footer of %s records %d rows, expected %d", path, got, wantRows)
	}
	return nil
}
