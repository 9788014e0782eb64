package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jot/internal/editor"
)

// Environment variables that override the config file.
const (
	EnvConfig   = "JOT_CONFIG"
	EnvRoot     = "JOT_ROOT"
	EnvDBPath   = "JOT_DB_PATH"
	EnvEditor   = "EDITOR"
	EnvLogLevel = "JOT_LOG_LEVEL"
)

const appName = "jot"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	Index  IndexConfig       `yaml:"index"`
	Editor EditorConfig      `yaml:"editor"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Notes.Validate(); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return checkLayout(c)
}

// ApplyEnv overrides file values with the JOT_* variables and $EDITOR.
// Unset or empty variables leave the value alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvRoot); v != "" {
		c.Notes.Root = v
	}
	if v := getenv(EnvDBPath); v != "" {
		c.Index.Path = v
	}
	if v := getenv(EnvEditor); v != "" {
		c.Editor.Command = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		if err := c.App.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	return nil
}

// Resolve makes the notes root and index path absolute, expanding a leading "~".
func (c *Config) Resolve() error {
	var err error
	if c.Notes.Root, err = absPath(c.Notes.Root); err != nil {
		return fmt.Errorf("notes root: %w", err)
	}
	if c.Index.Path, err = absPath(c.Index.Path); err != nil {
		return fmt.Errorf("index path: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// NotesConfig holds the directory the note files live under.
type NotesConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// IndexConfig holds the badger directory of the note index.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EditorConfig holds the command notes are edited with.
type EditorConfig struct {
	Command string `yaml:"command"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Notes: NotesConfig{
			Root: filepath.Join(dataDir(), appName),
		},
		Index: IndexConfig{
			Path: filepath.Join(cacheDir(), appName),
		},
		Editor: EditorConfig{
			Command: editor.DefaultCommand,
		},
	}
}

// DefaultConfigPath is <user config dir>/jot/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName+".yaml")
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// dataDir follows XDG_DATA_HOME, falling back to the platform convention.
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support")
	case "windows":
		if dir := os.Getenv("LocalAppData"); dir != "" {
			return dir
		}
	}
	return filepath.Join(home, ".local", "share")
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName+"-cache")
	}
	return dir
}

func absPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, p[1:])
	}
	return filepath.Abs(p)
}

var errIndexInRoot = errors.New("index path must not be inside the notes root")

// checkLayout rejects an index directory placed inside the notes root, where
// the watcher would see badger's writes. Relative paths are not compared.
func checkLayout(c *Config) error {
	if !filepath.IsAbs(c.Notes.Root) || !filepath.IsAbs(c.Index.Path) {
		return nil
	}
	rel, err := filepath.Rel(c.Notes.Root, c.Index.Path)
	if err != nil {
		return nil
	}
	if rel == "." || !strings.HasPrefix(rel, "..") {
		return errIndexInRoot
	}
	return nil
}
