package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures a CSVWriter
type CSVOptions struct {
	Delimiter rune
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter provides delimited export functionality
type CSVWriter struct {
	delimiter rune
	bom       bool
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(opts CSVOptions, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	return &CSVWriter{
		delimiter: opts.Delimiter,
		bom:       opts.BOMPrefix,
		logger:    logger,
	}
}

// Write encodes the header and records to w
func (w *CSVWriter) Write(out io.Writer, headers []string, records [][]string) error {
	if w.bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	writer.Comma = w.delimiter

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes headers and records to path. The file is written under a
// temporary name and renamed into place, so a failed write leaves any
// previous file untouched.
func (w *CSVWriter) WriteFile(path string, headers []string, records [][]string) error {
	w.logger.Info("Writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	return writeAtomic(path, func(f *os.File) error {
		return w.Write(f, headers, records)
	})
}

// writeAtomic creates a temp file next to path, fills it with write and
// renames it over path.
func writeAtomic(path string, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
