package excel

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"edustatus/internal/domain"
)

// columnWidthPadding is added to the widest value when sizing a column.
const columnWidthPadding = 2

// WriteError wraps any failure raised while writing or appending results.
// It is the only error kind the writer returns after construction.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("excel write: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func writeErr(op string, err error) error {
	return &WriteError{Op: op, Err: err}
}

// Writer persists result batches to a single xlsx file. It holds no file
// handle between calls; each call opens, rewrites and closes the target.
// Callers sharing one path across goroutines or processes must serialize
// access themselves.
type Writer struct {
	path   string
	logger *log.Logger
}

// NewWriter builds a Writer for the given target path, creating the parent
// directory (with parents) when absent. Directory creation failures propagate.
func NewWriter(path string, logger *log.Logger) (*Writer, error) {
	if path == "" {
		return nil, errors.New("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{path: path, logger: logger}, nil
}

// Path returns the target file path.
func (w *Writer) Path() string { return w.path }

// WriteResults writes a fresh file containing the header row plus one row per
// result, overwriting any existing file. Returns the file path.
func (w *Writer) WriteResults(results []domain.StudentResult) (string, error) {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, result.ToRow())
	}
	if err := w.writeFile(rows); err != nil {
		return "", err
	}
	w.logger.Printf("[excel] wrote %d results to %s", len(results), w.path)
	return w.path, nil
}

// AppendResults adds the results after the rows already on disk. A missing
// target delegates to WriteResults. An existing file whose header set differs
// from the schema is overwritten after a logged warning; its rows are
// discarded, not merged.
func (w *Writer) AppendResults(results []domain.StudentResult) (string, error) {
	if _, err := os.Stat(w.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return w.WriteResults(results)
		}
		return "", writeErr("stat existing file", err)
	}

	existing, err := w.readExistingRows()
	if err != nil {
		return "", err
	}
	if !sameColumns(existing.header, domain.ResultColumns) {
		w.logger.Printf("[excel] existing file %s has different columns, creating new file", w.path)
		return w.WriteResults(results)
	}

	combined := existing.rows
	for _, result := range results {
		combined = append(combined, result.ToRow())
	}
	if err := w.writeFile(combined); err != nil {
		return "", err
	}
	w.logger.Printf("[excel] appended %d results to %s (%d rows total)", len(results), w.path, len(combined))
	return w.path, nil
}

// GenerateDefaultFilename returns a timestamped default result filename.
func GenerateDefaultFilename() string {
	return fmt.Sprintf("student_status_results_%s.xlsx", time.Now().Format("20060102_150405"))
}

type existingTable struct {
	header []string
	rows   [][]string
}

func (w *Writer) readExistingRows() (existingTable, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return existingTable{}, writeErr("open existing file", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return existingTable{}, writeErr("read existing file", errors.New("file has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return existingTable{}, writeErr("read existing rows", err)
	}
	if len(rows) == 0 {
		return existingTable{}, nil
	}

	// GetRows trims trailing empty cells, so pad data rows back to schema width.
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data = append(data, padRow(row, len(domain.ResultColumns)))
	}
	return existingTable{header: rows[0], rows: data}, nil
}

// writeFile builds the workbook in memory and promotes it to the target path
// via a temp file and rename, so a failure mid-write never leaves a truncated
// file behind.
func (w *Writer) writeFile(rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := domain.ResultSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return writeErr("prepare sheet", err)
	}
	if err := setRow(f, sheet, 1, domain.ResultColumns); err != nil {
		return writeErr("write header", err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return writeErr("write row", err)
		}
	}
	if err := w.sizeColumns(f, sheet, rows); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	tempFile, err := os.CreateTemp(dir, ".results-*.xlsx")
	if err != nil {
		return writeErr("create temp file", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if err := f.Write(tempFile); err != nil {
		return writeErr("write workbook", err)
	}
	if err := tempFile.Sync(); err != nil {
		return writeErr("sync workbook", err)
	}
	if err := tempFile.Close(); err != nil {
		return writeErr("close workbook", err)
	}
	if err := os.Rename(tempPath, w.path); err != nil {
		return writeErr("promote workbook", err)
	}
	cleanup = false
	return nil
}

// sizeColumns sets each column to the widest of its header and cell values,
// plus padding.
func (w *Writer) sizeColumns(f *excelize.File, sheet string, rows [][]string) error {
	for i, header := range domain.ResultColumns {
		width := utf8.RuneCountInString(header)
		for _, row := range rows {
			if i < len(row) {
				if l := utf8.RuneCountInString(row[i]); l > width {
					width = l
				}
			}
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return writeErr("resolve column name", err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+columnWidthPadding)); err != nil {
			return writeErr("size column", err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// sameColumns compares column names as an unordered set. Duplicate column
// names are not expected in either side.
func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, name := range a {
		seen[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := seen[name]; !ok {
			return false
		}
	}
	return true
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
