package commands

import (
	"fmt"

	"git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides output_dir)"`
	Clean       bool   `help:"Remove the output directory before building"`
	Report      string `help:"Write a JSON build report to this file (overrides report_file)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file (overrides metrics_file)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.OutputDir = b.Output
	}
	if b.Clean {
		cfg.Clean = true
	}
	if b.Report != "" {
		cfg.ReportFile = b.Report
	}
	if b.MetricsFile != "" {
		cfg.MetricsFile = b.MetricsFile
	}
	// Overrides must pass the same checks as the file.
	if err := cfg.Validate(); err != nil {
		return errors.ConfigInvalid("command line", err)
	}

	var opts []site.Option
	if cfg.MetricsFile != "" {
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(nil)))
	}
	report, err := site.NewBuilder(cfg, opts...).Build(g.Context)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Built %d posts into %s (%s)\n", len(report.Posts), cfg.OutputPath(), report.Summary())
	return nil
}
