// Package commands implements the postbuilder CLI commands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/postbuilder/internal/config"
)

// Global carries process-wide state into commands.
type Global struct {
	Context context.Context
	Stdout  io.Writer
	Logger  *slog.Logger
	// LogOutput receives log records; stderr outside tests.
	LogOutput io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path, relative to --dir" default:"postbuilder.yaml"`
	Dir     string           `short:"C" name:"dir" help:"Site root directory" default:"." type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build      BuildCmd   `cmd:"" default:"withargs" help:"Build the site (default command)"`
	Init       InitCmd    `cmd:"" help:"Create the starter src/, template/ and style/ layout"`
	New        NewCmd     `cmd:"" help:"Create a new post from a title"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.LogOutput, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// ConfigPath resolves --config against --dir.
func (c *CLI) ConfigPath() string {
	if filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.Dir, c.Config)
}

// LoadConfig reads the configuration and roots it at --dir.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.Root = c.Dir
	return cfg, nil
}
