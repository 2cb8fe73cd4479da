package config

import (
	"log/slog"
	"path/filepath"
)

// Paths contains the resolved file locations for one run
type Paths struct {
	DataDir      string
	IdentityFile string
	MarksFile    string
	WeightsFile  string // empty when no weights source is configured
	ExportDir    string
	ExportFile   string
	WorkbookFile string
}

// GetPaths resolves the configured file names against their directories
func (c *Config) GetPaths() *Paths {
	dataDir := c.Data.Dir
	exportDir := c.Export.Dir
	if exportDir == "" {
		exportDir = dataDir
	}

	p := &Paths{
		DataDir:      dataDir,
		IdentityFile: resolve(dataDir, c.Data.IdentityFile),
		MarksFile:    resolve(dataDir, c.Data.MarksFile),
		ExportDir:    exportDir,
		ExportFile:   resolve(exportDir, c.Export.File),
		WorkbookFile: resolve(exportDir, c.Export.WorkbookFile),
	}
	if c.Data.WeightsFile != "" {
		p.WeightsFile = resolve(dataDir, c.Data.WeightsFile)
	}
	return p
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("data_dir", p.DataDir),
		slog.String("identity_file", p.IdentityFile),
		slog.String("marks_file", p.MarksFile),
		slog.String("weights_file", p.WeightsFile),
		slog.String("export_file", p.ExportFile))
}

// resolve joins name onto dir unless name is already absolute
func resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
