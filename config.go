package main

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the tunables read from DOODLE_* environment
// variables at startup.
type Config struct {
	SaveDirectory string  `envconfig:"SAVE_DIR" default:""`
	GridSize      float64 `envconfig:"GRID_SIZE" default:"16"`
	SnapToGrid    bool    `envconfig:"SNAP" default:"true"`
	ExportScale   float64 `envconfig:"EXPORT_SCALE" default:"2"`
	HistoryLimit  int     `envconfig:"HISTORY_LIMIT" default:"50"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("doodle", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// savePath resolves a document filename against the configured save
// directory, creating the directory on first use.
func (c *Config) savePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
