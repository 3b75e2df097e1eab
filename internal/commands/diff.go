package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

func CreateDiffCommand() *DiffCommand {
	gc := &DiffCommand{
		fs: flag.NewFlagSet("diff", flag.ExitOnError),
	}
	gc.fs.BoolVar(&gc.refresh, "refresh", false, "Re-download the sources instead of using cached copies")
	return gc
}

// DiffCommand prints a unified diff between the current hosts file and the
// would-be merged content.
type DiffCommand struct {
	fs      *flag.FlagSet
	cfg     *config.Config
	refresh bool
}

func (g *DiffCommand) Name() string {
	return g.fs.Name()
}

func (g *DiffCommand) Init(args []string, ctx *AppContext) error {
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

func (g *DiffCommand) Run() error {
	svc := service.NewMergeService(g.cfg)

	diff, diags, err := svc.Diff(context.Background(), g.cfg.EnabledSourceNames(), g.refresh)
	if err != nil {
		return err
	}

	if diff == "" {
		fmt.Fprintln(os.Stdout, "No changes.")
	} else {
		fmt.Fprint(os.Stdout, diff)
	}
	printDiagnostics(diags)

	return nil
}
