package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	EnvPath = "PATH"
)

type Configuration struct {
	configFs afero.Fs

	// Prompt is expanded before every line in interactive sessions.
	Prompt       string `json:"prompt"`
	ColorPrompt  bool   `json:"color_prompt"`
	HistoryFile  string `json:"history_file"`
	HistoryLimit int    `json:"history_limit" validate:"gte=0"`
	EventLog     string `json:"event_log"`

	// InheritPath searches PATH exactly as the environment sets it, even when
	// it is unset.
	InheritPath bool   `json:"inherit_path"`
	DefaultPath string `json:"default_path"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Getenv reads the environment jobs are resolved against. PATH falls back to
// DefaultPath when it's unset and InheritPath is false.
func (c *Configuration) Getenv(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok && key == EnvPath && !c.InheritPath {
		return c.DefaultPath
	}
	return value
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewMemMapFs()
	}
	return c.configFs
}

// HistoryPath returns the absolute path of the history file or the empty
// string if history isn't persisted.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" {
		return ""
	}
	if filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	if bp, ok := c.configFs.(*afero.BasePathFs); ok {
		if realPath, err := bp.RealPath(c.HistoryFile); err == nil {
			return realPath
		}
	}
	return ""
}

// OpenEventLog opens the event log in an append only state. It returns
// afero.ErrFileNotFound if the event log is disabled.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, afero.ErrFileNotFound
	}
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, afero.ErrFileNotFound
	}
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built in configuration. Nothing it references is
// persisted.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	out.HistoryFile = ""
	out.EventLog = ""
	return out
}
