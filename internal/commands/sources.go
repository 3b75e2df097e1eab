package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/hostsfilter/internal/config"
)

func CreateSourcesCommand() *SourcesCommand {
	gc := &SourcesCommand{
		fs: flag.NewFlagSet("sources", flag.ExitOnError),
	}
	gc.fs.StringVar(&gc.enable, "enable", "", "Enable the named source and persist the selection")
	gc.fs.StringVar(&gc.disable, "disable", "", "Disable the named source and persist the selection")
	return gc
}

// SourcesCommand lists the configured sources and toggles the selection.
type SourcesCommand struct {
	fs      *flag.FlagSet
	cfg     *config.Config
	enable  string
	disable string
}

func (g *SourcesCommand) Name() string {
	return g.fs.Name()
}

func (g *SourcesCommand) Init(args []string, ctx *AppContext) error {
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

func (g *SourcesCommand) Run() error {
	if g.enable != "" {
		if err := g.toggle(g.enable, true); err != nil {
			return err
		}
	}
	if g.disable != "" {
		if err := g.toggle(g.disable, false); err != nil {
			return err
		}
	}

	for _, src := range g.cfg.Sources {
		marker := " "
		if src.Enabled {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "[%s] %-24s %s\n", marker, src.Name, src.URL)
	}

	return nil
}

func (g *SourcesCommand) toggle(name string, enabled bool) error {
	src, err := g.cfg.GetSourceByName(name)
	if err != nil {
		return err
	}
	src.Enabled = enabled
	return g.cfg.WriteConfig()
}
