package export

import (
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ezoic/detailviews/dataset"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Sheet names of WriteWorkbook.
const (
	SheetCleaned = "cleaned"
	SheetLog     = "log"
)

// WriteWorkbook writes the raw and log views to an xlsx file with one sheet
// each. NaN cells are left empty.
func WriteWorkbook(path string, raw, logView *dataset.Frame) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = dvErrors.Wrap(cerr, "close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCleaned); err != nil {
		return dvErrors.Wrap(err, "rename first sheet")
	}
	if err := writeSheet(f, SheetCleaned, raw); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetLog); err != nil {
		return dvErrors.Wrap(err, "add log sheet")
	}
	if err := writeSheet(f, SheetLog, logView); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dvErrors.Wrapf(err, "create directory for %s", path)
	}
	if err := f.SaveAs(path); err != nil {
		return dvErrors.Wrapf(err, "save %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, frame *dataset.Frame) error {
	header := make([]interface{}, len(frame.Columns))
	for j, c := range frame.Columns {
		header[j] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return dvErrors.Wrapf(err, "write %s header", sheet)
	}

	row := make([]interface{}, len(frame.Columns))
	for i := 0; i < frame.Rows(); i++ {
		for j := range row {
			v := frame.Data.At(i, j)
			if math.IsNaN(v) {
				row[j] = nil
			} else {
				row[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return dvErrors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return dvErrors.Wrapf(err, "write %s row %d", sheet, i)
		}
	}
	return nil
}
