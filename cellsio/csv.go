package cellsio

import (
	"errors"
	"os"

	"s2-spectral/celltools"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

func WriteCSV(cellData []celltools.S2CellData, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	rows := toRows(cellData)
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	logrus.Infof("Wrote %d cells to %s", len(rows), path)
	return nil
}
