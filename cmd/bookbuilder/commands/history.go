package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to show" default:"10"`
	Build string `help:"Show the full JSON report for one build ID"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	dbPath := cfg.HistoryDB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root.Root, dbPath)
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if h.Build != "" {
		r, err := store.Get(context.Background(), h.Build)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	entries, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-8s  errors=%d warnings=%d renders=%d  %s\n",
			e.Start.Format("2006-01-02 15:04:05"), e.Outcome,
			e.Errors, e.Warnings, e.Renders, e.BuildID)
	}
	return nil
}
