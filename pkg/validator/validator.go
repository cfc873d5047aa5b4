// Package validator holds the field and path checks that gate records before
// lookup and files before writing. Every check returns a pass/fail pair so a
// caller can accumulate all failures for one record before deciding.
package validator

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	regNumberPattern = regexp.MustCompile(`^[A-Z]{3}-\d+/\d+$`) // e.g. ECU-10209/25
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

var excelExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
	".xlsm": {},
	".xlsb": {},
}

// Validator bundles the checks with an injected logger.
type Validator struct {
	logger *log.Logger
}

// New returns a Validator logging through the given logger.
func New(logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.Default()
	}
	return &Validator{logger: logger}
}

// Email checks address shape. It never touches the network.
func (v *Validator) Email(email string) (bool, string) {
	if email == "" {
		return false, "email cannot be empty"
	}
	if !emailPattern.MatchString(email) {
		return false, "invalid email format"
	}
	return true, ""
}

// RegistrationNumber checks the XXX-#####/## shape.
func (v *Validator) RegistrationNumber(value string) (bool, string) {
	if value == "" {
		return false, "registration number cannot be empty"
	}
	if !regNumberPattern.MatchString(value) {
		return false, "invalid registration number format (expected XXX-#####/##)"
	}
	return true, ""
}

// ExcelFile checks that path names a readable Excel file. Checks run in order
// and the first failure wins.
func (v *Validator) ExcelFile(path string) (bool, string) {
	if path == "" {
		return false, "file path cannot be empty"
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("file does not exist: %s", path)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Sprintf("not a file: %s", path)
	}
	if _, ok := excelExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return false, "invalid file type, expected an Excel file (.xlsx, .xls, .xlsm, .xlsb)"
	}
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Sprintf("cannot read file: %v", err)
	}
	defer func() { _ = f.Close() }()
	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Sprintf("cannot read file: %v", err)
	}
	return true, ""
}

// OutputPath checks that filename can be written under directory, creating the
// directory (with parents) when absent. Checks short-circuit in order.
func (v *Validator) OutputPath(directory, filename string) (bool, string) {
	if directory == "" {
		return false, "directory path cannot be empty"
	}
	if _, err := os.Stat(directory); err != nil {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return false, fmt.Sprintf("cannot create directory: %v", err)
		}
		v.logger.Printf("[validator] created output directory %s", directory)
	}
	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		return false, fmt.Sprintf("not a directory: %s", directory)
	}

	probe := filepath.Join(directory, ".write_probe")
	pf, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Sprintf("directory is not writable: %v", err)
	}
	_ = pf.Close()
	if err := os.Remove(probe); err != nil {
		return false, fmt.Sprintf("directory is not writable: %v", err)
	}

	if filename == "" {
		return false, "filename cannot be empty"
	}
	if invalidFileChars.MatchString(filename) {
		return false, "filename contains invalid characters"
	}
	target := filepath.Join(directory, filename)
	switch strings.ToLower(filepath.Ext(target)) {
	case ".xlsx", ".xls":
	default:
		return false, "invalid file extension, expected .xlsx or .xls"
	}
	if _, err := os.Stat(target); err == nil {
		tf, err := os.OpenFile(target, os.O_WRONLY, 0)
		if err != nil {
			return false, fmt.Sprintf("file exists and is not writable: %s", target)
		}
		_ = tf.Close()
	}
	return true, ""
}

// SanitizeFilename replaces characters that are unsafe in file names with an
// underscore and forces an Excel extension. Pure, no I/O.
func SanitizeFilename(name string) string {
	sanitized := invalidFileChars.ReplaceAllString(name, "_")
	lower := strings.ToLower(sanitized)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		sanitized += ".xlsx"
	}
	return sanitized
}
