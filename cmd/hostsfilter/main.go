package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/hostsfilter/internal/commands"
	"github.com/maksimkurb/hostsfilter/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "/etc/hostsfilter/hostsfilter.conf", "Path to configuration file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Hosts File Blocklist Manager\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  fetch                   Download the enabled blocklists to the cache directory\n")
		fmt.Fprintf(os.Stderr, "  preview                 Show merge statistics and conflicts without writing\n")
		fmt.Fprintf(os.Stderr, "  diff                    Show a unified diff of the would-be hosts file\n")
		fmt.Fprintf(os.Stderr, "  apply                   Merge the enabled blocklists into the hosts file (with backup)\n")
		fmt.Fprintf(os.Stderr, "  sources                 List sources and toggle the selection\n")
		fmt.Fprintf(os.Stderr, "  server                  Run the HTTP API for a UI layer\n")
		fmt.Fprintf(os.Stderr, "  init-config             Write a default configuration file\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateFetchCommand(),
		commands.CreatePreviewCommand(),
		commands.CreateDiffCommand(),
		commands.CreateApplyCommand(),
		commands.CreateSourcesCommand(),
		commands.CreateServerCommand(),
		commands.CreateInitConfigCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
