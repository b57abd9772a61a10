// Package config loads the optional config.yaml and .env files that sit
// beside the reminder database.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
)

// File mirrors config.yaml. Every field is optional.
type File struct {
	Store    string   `yaml:"store"`
	ID       string   `yaml:"id" validate:"omitempty,max=128,printascii"`
	LogLevel string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Server   Server   `yaml:"server"`
	Defaults Defaults `yaml:"defaults"`
}

type Server struct {
	Addr            string        `yaml:"addr" validate:"omitempty,hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// Defaults are the times offered when a slot is enabled without one.
type Defaults struct {
	Morning     string `yaml:"morning" validate:"omitempty,hhmm"`
	Noon        string `yaml:"noon" validate:"omitempty,hhmm"`
	Evening     string `yaml:"evening" validate:"omitempty,hhmm"`
	BeforeSleep string `yaml:"before_sleep" validate:"omitempty,hhmm"`
}

// Settings converts the defaults block, leaving unset entries empty.
func (d Defaults) Settings() models.Settings {
	return models.Settings{
		DefaultMorning:     d.Morning,
		DefaultNoon:        d.Noon,
		DefaultEvening:     d.Evening,
		DefaultBeforeSleep: d.BeforeSleep,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		t, err := models.ParseTimeOfDay(fl.Field().String())
		return err == nil && t.IsSet()
	})
	return v
}

// Load reads and validates path. A missing file yields the zero File.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return f, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return f, nil
}

// Validate checks field formats.
func (f File) Validate() error {
	return validate.Struct(f)
}

// Save writes f to path as YAML.
func Save(path string, f File) error {
	if err := f.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadEnv loads each existing .env file in order. Variables already in the
// environment win. Returns the files that were loaded.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Paths groups the files medremind keeps under its config directory.
type Paths struct {
	Dir      string
	Config   string
	Env      string
	Database string
}

// ResolvePaths expands dir and derives the standard file locations.
func ResolvePaths(dir string) (Paths, error) {
	expanded, err := ExpandPath(dir)
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Dir:      expanded,
		Config:   filepath.Join(expanded, constants.ConfigFileName),
		Env:      filepath.Join(expanded, constants.EnvFileName),
		Database: filepath.Join(expanded, constants.DefaultDBFileName),
	}, nil
}
