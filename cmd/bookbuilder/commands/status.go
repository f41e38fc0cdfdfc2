package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
)

// StatusCmd implements the 'status' command: completion rollup per part.
type StatusCmd struct{}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPipeline(root, cfg, nil, g.Logger)
	r := p.Run(ctx, pipeline.Options{SkipRender: true})

	if r.Completion == nil {
		fmt.Println("No completion data (structural errors or no content).")
		g.ExitCode = r.ExitCode()
		return nil
	}

	c := r.Completion
	fmt.Printf("%s: %.1f%% complete (%d chapters, %d appendices)\n",
		cfg.Title, c.OverallPercent, c.Chapters, c.Appendices)
	for _, part := range c.Parts {
		fmt.Printf("  part %d: %.1f%% (%d documents)\n", part.Part, part.Percent, part.Documents)
	}

	g.ExitCode = r.ExitCode()
	return nil
}
