package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
)

// ValidateCmd implements the 'validate' command: the full analysis pipeline
// with render dispatch skipped.
type ValidateCmd struct {
	Locale string `help:"Restrict translation checks to one locale"`
	Report string `help:"Write the build report as JSON to this path"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPipeline(root, cfg, nil, g.Logger)
	r := p.Run(ctx, pipeline.Options{
		SkipRender: true,
		Locale:     v.Locale,
		ReportPath: v.Report,
	})

	printSummary(r)
	if r.TranslationSum != nil && len(r.TranslationSum.Locales) > 0 {
		s := r.TranslationSum
		fmt.Printf("Translations: %d linked, %d stale, %d missing, %d orphaned across %v\n",
			s.Linked, s.Stale, s.Missing, s.Orphaned, s.Locales)
	}

	g.ExitCode = r.ExitCode()
	return nil
}
