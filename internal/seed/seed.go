// Package seed reads category listing URLs from a spreadsheet.
package seed

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadSeedURLs returns the URL column of every sheet in the workbook, in sheet
// then row order. The first row of a sheet is its header; sheets without a
// URL header and empty cells are skipped.
func LoadSeedURLs(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open seed workbook %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		col := urlColumn(rows[0])
		if col < 0 {
			log.Printf("Sheet %q has no URL column, skipping", sheet)
			continue
		}
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			if u := strings.TrimSpace(row[col]); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}

func urlColumn(header []string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "URL") {
			return i
		}
	}
	return -1
}
