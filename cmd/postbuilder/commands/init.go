package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/postbuilder/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	res, err := scaffold.Init(root.Dir, i.Force)
	if err != nil {
		return fmt.Errorf("init %s: %w", root.Dir, err)
	}
	for _, rel := range res.Created {
		_, _ = fmt.Fprintf(g.Stdout, "created %s\n", filepath.Join(root.Dir, rel))
	}
	for _, rel := range res.Skipped {
		_, _ = fmt.Fprintf(g.Stdout, "kept    %s (use --force to overwrite)\n", filepath.Join(root.Dir, rel))
	}
	return nil
}
