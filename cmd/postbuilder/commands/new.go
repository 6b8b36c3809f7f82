package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/scaffold"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Title string `arg:"" help:"Post title; the file name is derived from it"`
	Force bool   `help:"Overwrite an existing post"`
}

func (n *NewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	path, err := scaffold.NewPost(cfg.SourcePath(), n.Title, time.Now(), n.Force)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "created %s\n", path)
	return nil
}
