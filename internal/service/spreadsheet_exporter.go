package service

import (
	"fmt"
	"strings"
	"time"

	"healthcare-admin-console/internal/domain/entity"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	missingValue     = "N/A"
	currencySymbol   = "₹"
	dateLayout       = "02/01/2006"
	dateTimeLayout   = "02/01/2006 15:04"
	fileStampLayout  = "20060102-150405"
	maxSheetNameSize = 31
)

// SpreadsheetFile is a rendered workbook ready to be served or written to disk
type SpreadsheetFile struct {
	Name        string
	ContentType string
	Content     []byte
	Rows        int
	// Checksum is the xxhash64 of Content, hex encoded
	Checksum string
}

// SpreadsheetExporter renders records into a single-sheet workbook
type SpreadsheetExporter struct {
	location *time.Location
	clock    func() time.Time
}

func NewSpreadsheetExporter(location *time.Location, clock func() time.Time) *SpreadsheetExporter {
	if location == nil {
		location = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &SpreadsheetExporter{location: location, clock: clock}
}

// Export writes a header row and one row per record.
// The workbook bytes depend only on screen and records; the timestamp goes into the file name.
func (e *SpreadsheetExporter) Export(screen *entity.Screen, records []entity.Record) (*SpreadsheetFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(screen.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(screen.Columns))
	for i, col := range screen.Columns {
		header[i] = col.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	if len(screen.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(screen.Columns), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(screen.Columns))
		if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
			return nil, err
		}
	}

	for i := range records {
		row := make([]interface{}, len(screen.Columns))
		for j, col := range screen.Columns {
			row[j] = e.FormatCell(&records[i], col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	content := buf.Bytes()

	return &SpreadsheetFile{
		Name:        fmt.Sprintf("%s-%s.xlsx", screen.Name, e.clock().In(e.location).Format(fileStampLayout)),
		ContentType: SpreadsheetContentType,
		Content:     content,
		Rows:        len(records),
		Checksum:    fmt.Sprintf("%016x", xxhash.Sum64(content)),
	}, nil
}

// FormatCell renders one record field the way it is displayed in the console
func (e *SpreadsheetExporter) FormatCell(record *entity.Record, col entity.Column) string {
	value := record.Value(col.Field)
	text := strings.TrimSpace(record.Text(col.Field))
	if value == nil || text == "" {
		return missingValue
	}

	switch col.Format {
	case entity.ColumnCurrency:
		amount, err := decimal.NewFromString(text)
		if err != nil {
			return currencySymbol + text
		}
		return currencySymbol + amount.String()
	case entity.ColumnDate:
		if t, ok := entity.ParseRecordTime(value, e.location); ok {
			return t.Format(dateLayout)
		}
	case entity.ColumnDateTime:
		if t, ok := entity.ParseRecordTime(value, e.location); ok {
			return t.Format(dateTimeLayout)
		}
	}
	return text
}

func sheetName(title string) string {
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > maxSheetNameSize {
		name = string(r[:maxSheetNameSize])
	}
	return name
}
