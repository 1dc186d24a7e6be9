package config

import (
	_ "embed"
	"errors"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/myshell/core/shell"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ErrNoStorage is returned when a file is requested from a configuration
// that has no directory or has the file disabled.
var ErrNoStorage = errors.New("no storage configured")

type Configuration struct {
	configFs afero.Fs

	Prompt      string `json:"prompt" validate:"required"`
	Color       string `json:"color" validate:"oneof=always auto never"`
	HistorySize int    `json:"history_size" validate:"gte=1,lte=100000"`
	HistoryFile string `json:"history_file"`
	EventLog    string `json:"event_log"`

	Variables []Variable `json:"variables" validate:"unique=Name,dive"`
}

// Variable is a shell variable set at startup.
type Variable struct {
	Name  string `json:"name" validate:"required,varname"`
	Value string `json:"value"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	if err := validate.RegisterValidation("varname", func(fl validator.FieldLevel) bool {
		return shell.IsName(fl.Field().String())
	}); err != nil {
		return err
	}

	return validate.Struct(c)
}

// Fs returns the filesystem rooted at the configuration directory, or nil
// for the built-in configuration.
func (c *Configuration) Fs() afero.Fs {
	return c.configFs
}

// Environ returns the startup variables as NAME=value pairs.
func (c *Configuration) Environ() []string {
	out := make([]string, 0, len(c.Variables))
	for _, v := range c.Variables {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// HistoryPath returns where history is persisted.
func (c *Configuration) HistoryPath() (afero.Fs, string, error) {
	if c.configFs == nil || c.HistoryFile == "" {
		return nil, "", ErrNoStorage
	}
	return c.configFs, c.HistoryFile, nil
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.configFs == nil || c.EventLog == "" {
		return nil, ErrNoStorage
	}
	return c.configFs.OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.configFs == nil || c.EventLog == "" {
		return nil, ErrNoStorage
	}
	return c.configFs.OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// Default returns the built-in configuration. It has no directory, so
// history and events are not persisted.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
