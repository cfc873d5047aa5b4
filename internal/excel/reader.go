package excel

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"edustatus/internal/domain"
)

// ReadError wraps any failure raised while reading student inputs.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("excel read: %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func readErr(op string, err error) error {
	return &ReadError{Op: op, Err: err}
}

// Reader loads student inputs from a source spreadsheet.
type Reader struct {
	path   string
	logger *log.Logger
}

// NewReader builds a Reader, rejecting paths that do not name an existing
// Excel file.
func NewReader(path string, logger *log.Logger) (*Reader, error) {
	if path == "" {
		return nil, readErr("open", fmt.Errorf("file path is required"))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, readErr("open", fmt.Errorf("file does not exist: %s", path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls", ".xlsm", ".xlsb":
	default:
		return nil, readErr("open", fmt.Errorf("invalid file extension: %s", filepath.Ext(path)))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reader{path: path, logger: logger}, nil
}

// SheetNames returns the workbook's sheet names.
func (r *Reader) SheetNames() ([]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, readErr("open workbook", err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// ReadStudents extracts one StudentInput per data row from the named sheet
// (the first sheet when sheet is empty), locating the registration-number and
// email columns by header name. Rows missing either value are skipped with a
// logged warning. Row indexes number data rows from 1.
func (r *Reader) ReadStudents(sheet, regNumberCol, emailCol string) ([]domain.StudentInput, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, readErr("open workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, readErr("select sheet", fmt.Errorf("file has no sheets"))
	}
	if sheet == "" {
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, readErr("read rows", err)
	}

	header, dataRows := splitHeader(rows)
	if header == nil {
		return nil, readErr("detect header", fmt.Errorf("no rows found in sheet %s", sheet))
	}

	regIdx := findColumn(header, regNumberCol)
	if regIdx < 0 {
		return nil, readErr("locate columns", fmt.Errorf("missing registration number column: %s", regNumberCol))
	}
	emailIdx := findColumn(header, emailCol)
	if emailIdx < 0 {
		return nil, readErr("locate columns", fmt.Errorf("missing email column: %s", emailCol))
	}

	students := make([]domain.StudentInput, 0, len(dataRows))
	for i, row := range dataRows {
		input := domain.StudentInput{
			RegNumber: cellAt(row, regIdx),
			Email:     cellAt(row, emailIdx),
			RowIndex:  i + 1,
		}
		if !input.Valid() {
			r.logger.Printf("[excel] skipping row %d due to missing data", i+1)
			continue
		}
		students = append(students, input)
	}
	r.logger.Printf("[excel] read %d students from %s", len(students), r.path)
	return students, nil
}

// splitHeader returns the first non-empty row as the header and the remaining
// non-empty rows as data.
func splitHeader(rows [][]string) ([]string, [][]string) {
	var header []string
	var data [][]string
	for _, row := range rows {
		if rowEmpty(row) {
			continue
		}
		if header == nil {
			header = row
			continue
		}
		data = append(data, row)
	}
	return header, data
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func findColumn(header []string, name string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == strings.TrimSpace(name) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
