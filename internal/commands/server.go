package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maksimkurb/hostsfilter/internal/api"
	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

func CreateServerCommand() *ServerCommand {
	gc := &ServerCommand{
		fs: flag.NewFlagSet("server", flag.ExitOnError),
	}
	gc.fs.StringVar(&gc.listenAddr, "listen", "", "Bind address (overrides api_listen_addr from the config)")
	return gc
}

// ServerCommand runs the HTTP API for a UI layer.
type ServerCommand struct {
	fs         *flag.FlagSet
	cfg        *config.Config
	listenAddr string
}

func (g *ServerCommand) Name() string {
	return g.fs.Name()
}

func (g *ServerCommand) Init(args []string, ctx *AppContext) error {
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

func (g *ServerCommand) Run() error {
	bindAddr := g.listenAddr
	if bindAddr == "" {
		bindAddr = g.cfg.GetAPIListenAddr()
	}

	svc := service.NewMergeService(g.cfg)
	server := api.NewServer(svc, bindAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infof("Received signal %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(ctx)
	}
}
