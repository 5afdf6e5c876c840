package prune

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/gsc-inspect/internal/common"
	"github.com/dtnitsch/gsc-inspect/models"
	"github.com/dtnitsch/gsc-inspect/pkg/prune"
	"github.com/urfave/cli/v2"
)

// configFromFlags merges the manifest (if any), --route flags and positional
// arguments. --root wins over the manifest root.
func configFromFlags(c *cli.Context) (*models.PruneConfig, error) {
	config := &models.PruneConfig{
		Root:   c.String("root"),
		DryRun: c.Bool("dry-run"),
	}

	if c.IsSet("manifest") {
		m, err := prune.LoadManifest(c.String("manifest"))
		if err != nil {
			return nil, err
		}
		if m.Root != "" && !c.IsSet("root") {
			config.Root = m.Root
		}
		config.Routes = append(config.Routes, m.Routes...)
	}

	for _, r := range c.StringSlice("route") {
		config.Routes = append(config.Routes, models.RouteSpec{Path: r})
	}
	for _, r := range c.Args().Slice() {
		config.Routes = append(config.Routes, models.RouteSpec{Path: r})
	}
	return config, nil
}

func PruneAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := configFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	if len(config.Routes) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No routes provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  gsc-inspect prune --root app "compliance/[slug]"`)
		fmt.Fprintln(os.Stderr, `  gsc-inspect prune --manifest routes.yaml --dry-run`)
		return cli.Exit("", common.ExitUsage)
	}

	outcomes, err := prune.New(config.Root, config.DryRun, logger).RemoveAll(config.Routes)

	if len(outcomes) > 0 {
		fmt.Printf("%-14s %-40s %s\n", "Status", "Route", "Path")
		fmt.Println(strings.Repeat("-", 80))
		for _, o := range outcomes {
			path := o.Path
			if path == "" {
				path = "(none present)"
			}
			fmt.Printf("%-14s %-40s %s\n", o.Status, o.Route, path)
		}
	}

	if err != nil {
		logger.Error("prune failed", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFatal)
	}
	return nil
}
