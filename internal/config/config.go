// Package config loads and validates the postbuilder configuration.
//
// The configuration file is optional: without one the builder uses the
// conventional layout (src/, template/, style/ into build/).
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/postbuilder/internal/errors"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "postbuilder.yaml"

// Config represents the application configuration
type Config struct {
	// Root is the directory relative paths are resolved against. Empty means
	// the process working directory. Never read from the file.
	Root string `yaml:"-"`

	SourceDir     string `yaml:"source_dir"`
	TemplateDir   string `yaml:"template_dir"`
	StyleDir      string `yaml:"style_dir"`
	OutputDir     string `yaml:"output_dir"`
	PostTemplate  string `yaml:"post_template"`
	IndexTemplate string `yaml:"index_template"`

	// Stylesheet is the generated highlight CSS file name inside the style output dir.
	Stylesheet     string `yaml:"stylesheet"`
	HighlightStyle string `yaml:"highlight_style"`

	DateStrategies []DateStrategy `yaml:"date_strategies"`
	Assets         AssetMode      `yaml:"assets"`
	Workers        int            `yaml:"workers"` // 0 = one per CPU
	Clean          bool           `yaml:"clean"`   // remove output dir before building

	SanitizeHTML     bool `yaml:"sanitize_html"`
	LenientTemplates bool `yaml:"lenient_templates"` // render missing variables as empty

	ReportFile  string `yaml:"report_file,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`

	Markdown MarkdownConfig `yaml:"markdown"`
}

// MarkdownConfig toggles Markdown engine extensions. Fenced code and
// highlighting are always on.
type MarkdownConfig struct {
	GFM        bool `yaml:"gfm"`
	EscapeHTML bool `yaml:"escape_html"` // escape raw HTML instead of passing it through
	HardWraps  bool `yaml:"hard_wraps"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Load reads configPath. A missing file yields Default(); any other read,
// parse or validation problem is a config error.
func Load(configPath string) (*Config, error) {
	// #nosec G304 -- configPath is an operator supplied CLI flag
	data, err := os.ReadFile(configPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.ConfigInvalid(configPath, fmt.Errorf("read: %w", err))
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.ConfigInvalid(configPath, fmt.Errorf("unmarshal: %w", err))
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, errors.ConfigInvalid(configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigInvalid(configPath, err)
	}
	return &cfg, nil
}

// Path resolves a configured path against Root. Absolute paths are returned unchanged.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// SourcePath returns the resolved source directory.
func (c *Config) SourcePath() string { return c.Path(c.SourceDir) }

// TemplatePath returns the resolved template directory.
func (c *Config) TemplatePath() string { return c.Path(c.TemplateDir) }

// StylePath returns the resolved static asset directory.
func (c *Config) StylePath() string { return c.Path(c.StyleDir) }

// OutputPath returns the resolved output directory.
func (c *Config) OutputPath() string { return c.Path(c.OutputDir) }

// StyleOutputPath is where static assets land inside the output directory.
func (c *Config) StyleOutputPath() string {
	return filepath.Join(c.OutputPath(), filepath.Base(filepath.Clean(c.StyleDir)))
}
