package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

func CreatePreviewCommand() *PreviewCommand {
	gc := &PreviewCommand{
		fs: flag.NewFlagSet("preview", flag.ExitOnError),
	}
	gc.fs.BoolVar(&gc.refresh, "refresh", false, "Re-download the sources instead of using cached copies")
	return gc
}

// PreviewCommand runs the merge without writing and prints its summary.
type PreviewCommand struct {
	fs      *flag.FlagSet
	cfg     *config.Config
	refresh bool
}

func (g *PreviewCommand) Name() string {
	return g.fs.Name()
}

func (g *PreviewCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *PreviewCommand) Run() error {
	svc := service.NewMergeService(g.cfg)

	result, diags, err := svc.BuildResult(context.Background(), g.cfg.EnabledSourceNames(), g.refresh)
	if err != nil {
		return err
	}

	stats := result.Stats()
	fmt.Fprintf(os.Stdout, "Preserved system entries:  %d\n", stats.PreservedEntries)
	fmt.Fprintf(os.Stdout, "New blocked hostnames:     %d\n", stats.NewBlockedHostnames)
	fmt.Fprintf(os.Stdout, "Whitelisted (skipped):     %d\n", stats.WhitelistedSkips)
	fmt.Fprintf(os.Stdout, "Conflicts:                 %d\n", stats.Conflicts)
	fmt.Fprintf(os.Stdout, "Total entries:             %d\n", stats.TotalEntries)

	for _, conflict := range result.Conflicts {
		fmt.Fprintf(os.Stdout, "  conflict: %s kept %s, rejected %s from %s\n",
			conflict.Hostname, conflict.WinningIP, conflict.LosingIP, conflict.LosingSource)
	}
	printDiagnostics(diags)

	return nil
}

func printDiagnostics(diags *service.Diagnostics) {
	if diags == nil {
		return
	}
	for _, issue := range diags.Unavailable {
		fmt.Fprintf(os.Stdout, "  unavailable: %s (%s)\n", issue.Source, issue.Error)
	}
	for source, skips := range diags.ParseSkips {
		fmt.Fprintf(os.Stdout, "  parse skips: %s skipped %d malformed line(s)\n", source, skips)
	}
	for source, notes := range diags.DuplicateNotes {
		for _, note := range notes {
			fmt.Fprintf(os.Stdout, "  duplicate: %s in %s kept %s, dropped %s (first occurrence wins)\n",
				note.Hostname, source, note.KeptIP, note.DroppedIP)
		}
	}
}
