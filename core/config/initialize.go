package config

import (
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir, leaving an existing
// configuration untouched.
func Initialize(dir string, logger *log.Logger) error {
	if err := afero.NewOsFs().MkdirAll(dir, 0700); err != nil {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), abs), logger)
}

// InitializeFs writes the default configuration to the root of configFs.
func InitializeFs(configFs afero.Fs, logger *log.Logger) error {
	exists, err := afero.Exists(configFs, ConfigurationName)
	if err != nil {
		return err
	}
	if exists {
		logger.Printf("- %s already exists, skipping", ConfigurationName)
		return nil
	}

	logger.Printf("- Writing %s", ConfigurationName)
	return afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600)
}
