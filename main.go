package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/gsc-inspect/internal/common"
	dbactions "github.com/dtnitsch/gsc-inspect/internal/db"
	"github.com/dtnitsch/gsc-inspect/internal/inspect"
	"github.com/dtnitsch/gsc-inspect/internal/prune"
	"github.com/dtnitsch/gsc-inspect/pkg/help"
	"github.com/dtnitsch/gsc-inspect/pkg/inspection"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	// Actions exit through cli.Exit; anything left is a flag or usage error.
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(common.ExitUsage)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gsc-inspect",
		Usage: "Export Search Console URL Inspection results for every URL in a sitemap",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
		},
		Commands: []*cli.Command{
			inspectCommand(),
			pruneCommand(),
			historyCommand(),
			{
				Name:  "coldstart",
				Usage: "Print a quick-start reference as YAML",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect sitemap URLs and append results to a CSV, resuming where the last run stopped",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "site",
				Usage:    "Search Console property (https://example.com/ or sc-domain:example.com)",
				EnvVars:  []string{"GSC_SITE"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "sitemap",
				Usage:    "Sitemap or sitemap index URL",
				EnvVars:  []string{"GSC_SITEMAP"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "creds",
				Value:   "credentials.json",
				Usage:   "OAuth client secrets file",
				EnvVars: []string{"GSC_CREDENTIALS"},
			},
			&cli.StringFlag{
				Name:    "token",
				Value:   "token.json",
				Usage:   "Cached OAuth token file",
				EnvVars: []string{"GSC_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "out",
				Value:   "gsc_url_inspection.csv",
				Usage:   "CSV output file",
				EnvVars: []string{"GSC_OUT"},
			},
			&cli.IntFlag{
				Name:    "max",
				Value:   0,
				Usage:   "Inspect at most this many sitemap URLs (0 = all)",
				EnvVars: []string{"GSC_MAX"},
			},
			&cli.Float64Flag{
				Name:    "sleep",
				Value:   0.2,
				Usage:   "Seconds to wait after each inspected URL",
				EnvVars: []string{"GSC_SLEEP"},
			},
			&cli.IntFlag{
				Name:    "qpm",
				Value:   inspection.DefaultQueriesPerMinute,
				Usage:   "Inspection API quota in queries per minute (0 = unlimited)",
				EnvVars: []string{"GSC_QPM"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Record the run in this SQLite ledger",
				EnvVars: []string{"GSC_DB"},
			},
			&cli.StringFlag{
				Name:    "sitemap-cache",
				Usage:   "Cache fetched sitemap documents in this directory",
				EnvVars: []string{"GSC_SITEMAP_CACHE"},
			},
			&cli.DurationFlag{
				Name:  "sitemap-cache-ttl",
				Value: time.Hour,
				Usage: "How long cached sitemap documents stay fresh",
			},
		},
		Action: inspect.InspectAction,
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:      "prune",
		Usage:     "Remove route directories from a site tree",
		ArgsUsage: "[route...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Value:   ".",
				Usage:   "Directory that routes are relative to",
				EnvVars: []string{"GSC_PRUNE_ROOT"},
			},
			&cli.StringSliceFlag{
				Name:  "route",
				Usage: "Route to remove (repeatable)",
			},
			&cli.StringFlag{
				Name:    "manifest",
				Usage:   "YAML file listing routes to remove",
				EnvVars: []string{"GSC_PRUNE_MANIFEST"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be removed without removing it",
			},
		},
		Action: prune.PruneAction,
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List recorded inspect runs, or show one run",
		ArgsUsage: "[run-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "SQLite ledger written by inspect --db",
				EnvVars:  []string{"GSC_DB"},
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
				Usage: "Number of runs to list",
			},
		},
		Action: dbactions.HistoryAction,
	}
}
