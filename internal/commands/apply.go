package commands

import (
	"context"
	"flag"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

func CreateApplyCommand() *ApplyCommand {
	gc := &ApplyCommand{
		fs: flag.NewFlagSet("apply", flag.ExitOnError),
	}
	gc.fs.BoolVar(&gc.refresh, "refresh", true, "Re-download the sources before applying")
	return gc
}

// ApplyCommand merges the enabled sources into the target hosts file,
// backing up the previous content first.
type ApplyCommand struct {
	fs      *flag.FlagSet
	cfg     *config.Config
	refresh bool
}

func (g *ApplyCommand) Name() string {
	return g.fs.Name()
}

func (g *ApplyCommand) Init(args []string, ctx *AppContext) error {
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

func (g *ApplyCommand) Run() error {
	svc := service.NewMergeService(g.cfg)

	applied, result, diags, err := svc.Apply(context.Background(), g.cfg.EnabledSourceNames(), g.refresh)
	if err != nil {
		return err
	}

	stats := result.Stats()
	log.Infof("Applied %d entries (%d preserved, %d blocked hostnames, %d conflicts)",
		applied.WrittenCount, stats.PreservedEntries, stats.NewBlockedHostnames, stats.Conflicts)
	if applied.BackupPath != "" {
		log.Infof("Previous hosts file backed up to %s", applied.BackupPath)
	}
	printDiagnostics(diags)

	return nil
}
