package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_GetPaths(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   Paths
	}{
		{
			name:   "defaults resolve under data dir",
			mutate: func(*Config) {},
			want: Paths{
				DataDir:      "data",
				IdentityFile: filepath.Join("data", "students.csv"),
				MarksFile:    filepath.Join("data", "marks.csv"),
				WeightsFile:  filepath.Join("data", "weights.csv"),
				ExportDir:    "data",
				ExportFile:   filepath.Join("data", "all_students.csv"),
				WorkbookFile: filepath.Join("data", "all_students.xlsx"),
			},
		},
		{
			name: "absolute names and separate export dir",
			mutate: func(c *Config) {
				c.Data.IdentityFile = "/abs/ids.csv"
				c.Data.WeightsFile = ""
				c.Export.Dir = "out"
			},
			want: Paths{
				DataDir:      "data",
				IdentityFile: "/abs/ids.csv",
				MarksFile:    filepath.Join("data", "marks.csv"),
				ExportDir:    "out",
				ExportFile:   filepath.Join("out", "all_students.csv"),
				WorkbookFile: filepath.Join("out", "all_students.xlsx"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Equal(t, tt.want, *cfg.GetPaths())
		})
	}
}
