package sheets

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"contactsync/internal/contacts"
	"contactsync/internal/fileutil"
)

const (
	annotatedSheet = "Contacts"
	cleanedSheet   = "Sheet1"
	notListedLabel = "Not Listed"
	highlightColor = "FFFF00"
	fontFamily     = "Aptos Narrow"
)

var annotatedHeader = []string{"First Name", "Last Name", "Title", "Organization", "IsNew", "IsRemoved", "Notes", "ID"}

var cleanedHeader = []string{"First Name", "Last Name", "Title", "Account Name", "Notes"}

// Header aliases accepted when reading annotated workbooks written by older tools.
var (
	orgAliases     = []string{"organization", "account name"}
	newAliases     = []string{"isnew", "new", "highlight"}
	removedAliases = []string{"isremoved", "removed", "strike"}
	notesAliases   = []string{"notes"}
	idAliases      = []string{"id", "record id"}
)

// WriteAnnotated writes records to an annotated workbook at path, replacing it
// atomically. New rows are filled yellow and removed rows are struck through.
func WriteAnnotated(path string, records []contacts.AnnotatedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), annotatedSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newRowStyles(f)
	if err != nil {
		return err
	}
	if err := setRow(f, annotatedSheet, 1, 1, toAny(annotatedHeader)); err != nil {
		return err
	}
	if err := applyStyle(f, annotatedSheet, 1, 1, len(annotatedHeader), styles.header); err != nil {
		return err
	}

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		row := i + 2
		values := []any{rec.FirstName, rec.LastName, rec.Title, rec.Organization, rec.IsNew, rec.IsRemoved, rec.Notes, rec.ID}
		if err := setRow(f, annotatedSheet, row, 1, values); err != nil {
			return err
		}
		if style := styles.forRecord(rec); style != 0 {
			if err := applyStyle(f, annotatedSheet, row, 1, len(annotatedHeader), style); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(annotatedSheet, "A", "D", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(annotatedSheet, "G", "G", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return save(f, path)
}

// ReadAnnotated loads an annotated workbook written by WriteAnnotated. Rows
// with no name are skipped.
func ReadAnnotated(path string) ([]contacts.AnnotatedRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := normalizeHeader(rows[0])
	first := findColumn(header, firstNameColumns)
	last := findColumn(header, lastNameColumns)
	if first < 0 || last < 0 {
		return nil, fmt.Errorf("%s: %w: First Name/Last Name", filepath.Base(path), ErrMissingColumn)
	}
	title := findColumn(header, titleColumns)
	org := findColumn(header, orgAliases)
	isNew := findColumn(header, newAliases)
	isRemoved := findColumn(header, removedAliases)
	notes := findColumn(header, notesAliases)
	id := findColumn(header, idAliases)

	records := make([]contacts.AnnotatedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := contacts.AnnotatedRecord{
			Record: contacts.Record{
				ID:           cell(row, id),
				FirstName:    cell(row, first),
				LastName:     cell(row, last),
				Title:        cell(row, title),
				Organization: cell(row, org),
			},
			IsNew:     parseFlag(cell(row, isNew)),
			IsRemoved: parseFlag(cell(row, isRemoved)),
			Notes:     cell(row, notes),
		}
		if rec.FullName() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCleaned writes the cleaned deliverable: an organization title row, a
// header row, the current contacts (new ones highlighted), then a Not Listed
// section with departed contacts struck through.
func WriteCleaned(path, organization string, current, notListed []contacts.AnnotatedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != cleanedSheet {
		if err := f.SetSheetName(sheet, cleanedSheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = cleanedSheet
	}
	styles, err := newRowStyles(f)
	if err != nil {
		return err
	}

	const firstCol = 2
	lastCol := firstCol + len(cleanedHeader) - 1
	titleStart, _ := excelize.CoordinatesToCellName(firstCol, 1)
	titleEnd, _ := excelize.CoordinatesToCellName(lastCol, 1)
	if err := f.MergeCell(sheet, titleStart, titleEnd); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellValue(sheet, titleStart, organization); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if err := f.SetCellStyle(sheet, titleStart, titleEnd, styles.title); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	if err := setRow(f, sheet, 3, firstCol, toAny(cleanedHeader)); err != nil {
		return err
	}
	if err := applyStyle(f, sheet, 3, firstCol, lastCol, styles.header); err != nil {
		return err
	}

	row := 4
	for _, rec := range current {
		values := []any{rec.FirstName, rec.LastName, rec.Title, organization, rec.Notes}
		if err := setRow(f, sheet, row, firstCol, values); err != nil {
			return err
		}
		style := styles.regular
		if rec.IsNew {
			style = styles.new
		}
		if err := applyStyle(f, sheet, row, firstCol, lastCol, style); err != nil {
			return err
		}
		row++
	}

	row++
	label, _ := excelize.CoordinatesToCellName(firstCol, row)
	if err := f.SetCellValue(sheet, label, notListedLabel); err != nil {
		return fmt.Errorf("set section label: %w", err)
	}
	if err := f.SetCellStyle(sheet, label, label, styles.section); err != nil {
		return fmt.Errorf("style section label: %w", err)
	}
	row++

	for _, rec := range notListed {
		values := []any{rec.FirstName, rec.LastName, rec.Title, organization, rec.Notes}
		if err := setRow(f, sheet, row, firstCol, values); err != nil {
			return err
		}
		if err := applyStyle(f, sheet, row, firstCol, lastCol, styles.removed); err != nil {
			return err
		}
		row++
	}
	if err := f.SetColWidth(sheet, "B", "E", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "F", "F", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return save(f, path)
}

type rowStyles struct {
	title   int
	header  int
	section int
	regular int
	new     int
	removed int
}

func (s rowStyles) forRecord(rec contacts.AnnotatedRecord) int {
	switch {
	case rec.IsNew:
		return s.new
	case rec.IsRemoved:
		return s.removed
	default:
		return 0
	}
}

func newRowStyles(f *excelize.File) (rowStyles, error) {
	var styles rowStyles
	defs := []struct {
		target *int
		style  *excelize.Style
	}{
		{&styles.title, &excelize.Style{
			Font:      &excelize.Font{Italic: true, Family: fontFamily, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&styles.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Family: fontFamily, Size: 11},
			Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}},
		{&styles.section, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Family: fontFamily, Size: 11},
			Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 6}},
		}},
		{&styles.regular, &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}},
		{&styles.new, &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}},
		{&styles.removed, &excelize.Style{
			Font:      &excelize.Font{Strike: true, Family: fontFamily, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}},
	}
	for _, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return styles, fmt.Errorf("create style: %w", err)
		}
		*def.target = id
	}
	return styles, nil
}

func setRow(f *excelize.File, sheet string, row, col int, values []any) error {
	start, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func applyStyle(f *excelize.File, sheet string, row, fromCol, toCol, style int) error {
	start, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, start, end, style); err != nil {
		return fmt.Errorf("style row %d: %w", row, err)
	}
	return nil
}

func save(f *excelize.File, path string) error {
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		if _, err := f.WriteTo(w); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	})
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}
