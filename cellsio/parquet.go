package cellsio

import (
	"errors"
	"os"

	"s2-spectral/celltools"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

// Rows are flushed to a new row group every RowGroupSize rows.
const RowGroupSize = 100_000

func WriteParquet(cellData []celltools.S2CellData, path string) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := parquet.SchemaOf(new(CellRow))
	writer := parquet.NewGenericWriter[CellRow](output, schema, parquet.Compression(&parquet.Snappy))
	defer func() {
		err = errors.Join(err, writer.Close(), output.Close())
	}()

	rows := toRows(cellData)
	for start := 0; start < len(rows); start += RowGroupSize {
		end := min(start+RowGroupSize, len(rows))
		logrus.Infof("Writing cell %d", start)
		if _, err := writer.Write(rows[start:end]); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	logrus.Infof("Wrote %d cells to %s", len(rows), path)
	return nil
}
