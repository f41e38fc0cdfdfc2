package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.ConfigPath()
	if i.Force {
		_ = os.Remove(path)
	}
	if err := config.WriteStarter(path); err != nil {
		return err
	}

	// Seed the layout so the first chapter has somewhere to live.
	for _, dir := range []string{
		"content/chapters/part1",
		"content/appendices",
		"translations",
	} {
		if err := os.MkdirAll(filepath.Join(root.Root, dir), 0o755); err != nil {
			return err
		}
	}

	fmt.Printf("Created %s and the content directory layout.\n", path)
	return nil
}
