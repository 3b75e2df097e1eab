package commands

import (
	"flag"

	"github.com/maksimkurb/hostsfilter/internal/config"
)

func CreateInitConfigCommand() *InitConfigCommand {
	gc := &InitConfigCommand{
		fs: flag.NewFlagSet("init-config", flag.ExitOnError),
	}
	return gc
}

// InitConfigCommand writes a default configuration with the stock source
// catalog.
type InitConfigCommand struct {
	fs         *flag.FlagSet
	configPath string
}

func (g *InitConfigCommand) Name() string {
	return g.fs.Name()
}

func (g *InitConfigCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	g.configPath = ctx.ConfigPath
	return nil
}

func (g *InitConfigCommand) Run() error {
	_, err := config.WriteDefaultConfig(g.configPath)
	return err
}
