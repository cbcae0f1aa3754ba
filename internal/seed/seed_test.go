package seed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "seeds.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadSeedURLs(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"TVs": {
			{"Category", "URL"},
			{"OLED", "https://www.idealo.co.uk/cat/3751F1/oled-tvs.html"},
			{"Empty", ""},
			{"QLED", " https://www.idealo.co.uk/cat/3751F2/qled-tvs.html "},
		},
		"Notes": {
			{"Comment"},
			{"nothing to crawl here"},
		},
		"Laptops": {
			{"url"},
			{"https://www.idealo.co.uk/cat/3751/laptops.html"},
		},
	}, []string{"TVs", "Notes", "Laptops"})

	urls, err := LoadSeedURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.idealo.co.uk/cat/3751F1/oled-tvs.html",
		"https://www.idealo.co.uk/cat/3751F2/qled-tvs.html",
		"https://www.idealo.co.uk/cat/3751/laptops.html",
	}, urls)
}

func TestLoadSeedURLsMissingFile(t *testing.T) {
	_, err := LoadSeedURLs(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
