package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SourceExtensions are the source formats in order of preference
var SourceExtensions = []string{".csv", ".txt", ".xlsx"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates roster source files
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{logger: logger}
}

// FindSources lists the source files in dir, sorted by name
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		if !slices.Contains(SourceExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// ResolveSource returns path when it exists. Otherwise it looks for a file
// with the same stem and another source extension next to it, so that
// students.csv can be served by students.xlsx. The bool reports whether a
// substitute was chosen; when nothing matches path is returned unchanged.
func (d *Discovery) ResolveSource(path string) (string, bool) {
	if path == "" {
		return path, false
	}
	if _, err := os.Stat(path); err == nil {
		return path, false
	}

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	found, err := d.FindSources(dir)
	if err != nil {
		return path, false
	}
	for _, ext := range SourceExtensions {
		for _, f := range found {
			if strings.EqualFold(f.Name, stem+ext) {
				d.logger.Info("Using alternative source file",
					slog.String("configured", path),
					slog.String("resolved", f.Path))
				return f.Path, true
			}
		}
	}
	return path, false
}
