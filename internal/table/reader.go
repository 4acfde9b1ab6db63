package table

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ReadOptions controls how an input file becomes a Table.
type ReadOptions struct {
	// Delimiter for delimited text. If 0, chosen from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; empty means the first sheet.
	SheetName string
}

// Reader loads one file format.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt ReadOptions) (*Table, error)
}

var registry []Reader

// Register adds a reader. Later registrations take precedence.
func Register(r Reader) {
	registry = append([]Reader{r}, registry...)
}

// ReadFile selects a reader by file name. Unknown extensions are read as
// comma-separated text.
func ReadFile(path string, opt ReadOptions) (*Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return csvReader{}.Read(path, opt)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

func baseName(path string) string { return filepath.Base(path) }

func hasExt(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

// ReadError reports a data-access failure. It matches both ErrRead and the
// underlying cause under errors.Is.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read table %s: %v", e.Path, e.Err) }

func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

func readErr(err error, path string) error {
	return &ReadError{Path: path, Err: err}
}
