package harmonizer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// writeXLSX копия очищенной таблицы для тех, кто открывает данные в Excel.
func writeXLSX(path string, df dataframe.DataFrame, columns []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("f.NewStreamWriter: %w", err)
	}

	records := [][]string{columns}
	if df.Nrow() > 0 {
		records = df.Records()
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName: %w", err)
		}
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err = sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("sw.SetRow %s: %w", cell, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return fmt.Errorf("sw.Flush: %w", err)
	}
	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("f.SaveAs: %w", err)
	}
	return nil
}
