// Package export writes activity lists as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/consuntivo/internal/timesheet"
)

// AllSheet is the name of the sheet holding every exported row.
const AllSheet = "Attività filtrate"

// maxSheetName is the sheet name limit enforced by spreadsheet
// applications.
const maxSheetName = 31

var (
	allHeaders  = []string{"Tecnico", "Data", "Descrizione", "Commessa", "Sottocommessa", "Ore"}
	techHeaders = allHeaders[1:]
)

// FileName returns the download name for an export made at now.
func FileName(now time.Time) string {
	return "attivita_" + now.Format("2006-01-02") + ".xlsx"
}

// WriteActivities writes a workbook with one sheet listing all activities
// followed by one sheet per technician, in first-appearance order.
func WriteActivities(w io.Writer, activities []timesheet.Activity) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("export: close workbook: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), AllSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeRows(f, AllSheet, allHeaders, activities, true); err != nil {
		return err
	}

	var order []string
	byTech := map[string][]timesheet.Activity{}
	for _, a := range activities {
		if _, ok := byTech[a.Technician]; !ok {
			order = append(order, a.Technician)
		}
		byTech[a.Technician] = append(byTech[a.Technician], a)
	}

	used := map[string]bool{strings.ToLower(AllSheet): true}
	for _, tech := range order {
		name := SheetName(tech, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: new sheet %q: %w", name, err)
		}
		if err := writeRows(f, name, techHeaders, byTech[tech], false); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, headers []string, activities []timesheet.Activity, withTech bool) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: header %q: %w", sheet, err)
	}
	for i, a := range activities {
		row := []interface{}{a.Date, a.Description, a.Project, a.SubTask, a.Hours}
		if withTech {
			row = append([]interface{}{a.Technician}, row...)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

// SheetName turns a technician name into a sheet name that is valid and
// not yet in used: forbidden characters become "_", the result is cut to
// 31 runes and suffixed with a counter on collision. The chosen name is
// added to used, compared case-insensitively.
func SheetName(name string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Senza nome"
	}
	base = truncate(base, maxSheetName)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
