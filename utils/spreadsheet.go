package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseSpreadsheet reads an .xlsx or .csv file into one map per data row,
// keyed by the header labels of the first row. Numeric cells come back as
// float64 so spreadsheet date serials survive, empty cells as nil.
func ParseSpreadsheet(path string) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return parseExcel(path)
	case ".csv":
		return parseCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

func parseExcel(path string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw values keep date cells as their underlying serial numbers instead
	// of locale-formatted strings.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	return rowsToMaps(rows), nil
}

func parseCSV(path string) ([]map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return rowsToMaps(records), nil
}

func rowsToMaps(rows [][]string) []map[string]any {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	out := make([]map[string]any, 0, len(rows)-1)
	for _, record := range rows[1:] {
		if isBlankRow(record) {
			continue
		}
		row := make(map[string]any, len(header))
		for i, label := range header {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			if i >= len(record) {
				row[label] = nil
				continue
			}
			row[label] = cellValue(record[i])
		}
		out = append(out, row)
	}
	return out
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return trimmed
}
