package commands

import (
	"context"
	"flag"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

func CreateFetchCommand() *FetchCommand {
	gc := &FetchCommand{
		fs: flag.NewFlagSet("fetch", flag.ExitOnError),
	}
	gc.fs.BoolVar(&gc.all, "all", false, "Fetch every configured source, not only the enabled ones")
	return gc
}

// FetchCommand downloads the selected sources into the cache directory.
type FetchCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
	all bool
}

func (g *FetchCommand) Name() string {
	return g.fs.Name()
}

func (g *FetchCommand) Init(args []string, ctx *AppContext) error {
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

func (g *FetchCommand) Run() error {
	selection := g.cfg.EnabledSourceNames()
	if g.all {
		selection = selection[:0]
		for _, src := range g.cfg.Sources {
			selection = append(selection, src.Name)
		}
	}

	if len(selection) == 0 {
		log.Warnf("No sources selected, nothing to fetch")
		return nil
	}

	svc := service.NewMergeService(g.cfg)
	results, err := svc.FetchAll(context.Background(), selection)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			log.Errorf("List \"%s\": %v", result.Source.Name, result.Err)
		}
	}
	log.Infof("Fetched %d/%d lists", len(results)-failed, len(results))

	return nil
}
