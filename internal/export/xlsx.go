package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteWorkbook writes every group as a sheet of a single XLSX workbook.
func WriteWorkbook(w io.Writer, groups []*Group, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	names := newNameAllocator()

	for i, g := range groups {
		sheet := names.allocateSheet(SheetName(g.Key.Name))
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}

		rows := append([][]string{g.Header()}, g.Rows(loc)...)
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %q: %w", r+1, sheet, err)
			}
		}
	}

	if len(groups) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	return f.Write(w)
}

// SheetName strips characters Excel forbids and truncates to the sheet name limit.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Submissions"
	}
	return truncateRunes(name, maxSheetName)
}

// allocateSheet dedups like allocate but keeps the " (n)" form within the sheet name limit.
func (a *nameAllocator) allocateSheet(name string) string {
	if !a.used[strings.ToLower(name)] {
		a.used[strings.ToLower(name)] = true
		return name
	}
	for n := 1; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncateRunes(name, maxSheetName-len(suffix)) + suffix
		if !a.used[strings.ToLower(candidate)] {
			a.used[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
