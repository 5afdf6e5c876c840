package db

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/gsc-inspect/internal/common"
	dbpkg "github.com/dtnitsch/gsc-inspect/pkg/db"
	"github.com/urfave/cli/v2"
)

// HistoryAction lists recent runs, or shows one run when an ID is given.
func HistoryAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to open database: %v", err), common.ExitFatal)
	}
	defer database.Close()

	if c.NArg() > 0 {
		if err := showRun(c, database); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFatal)
		}
		return nil
	}

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to list runs: %v", err), common.ExitFatal)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-12s %-8s %-8s %-8s %-8s %-30s\n",
		"ID", "Started", "Status", "Found", "Skipped", "Written", "Failed", "Site")
	fmt.Println(strings.Repeat("-", 110))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-12s %-8d %-8d %-8d %-8d %-30s\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Status,
			r.Stats.Discovered,
			r.Stats.Skipped,
			r.Stats.Inspected,
			r.Stats.Failed,
			r.SiteURL,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'gsc-inspect history --db %s <id>' to see details\n", database.Path())

	return nil
}

func showRun(c *cli.Context, database *dbpkg.DB) error {
	runID, err := GetRunID(c)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	results, err := database.GetRunResults(runID)
	if err != nil {
		return fmt.Errorf("failed to get run results: %w", err)
	}

	finished := "(not finished)"
	if run.FinishedAt.Valid {
		finished = run.FinishedAt.Time.Format("2006-01-02 15:04:05")
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Finished:    %s\n", finished)
	fmt.Printf("Status:      %s\n", run.Status)
	fmt.Printf("Site:        %s\n", run.SiteURL)
	fmt.Printf("Sitemap:     %s\n", run.SitemapURL)
	fmt.Printf("Output:      %s\n", run.OutputPath)
	fmt.Printf("URLs:        %d discovered, %d after cap, %d skipped, %d written (%d failed)\n",
		run.Stats.Discovered, run.Stats.Considered, run.Stats.Skipped, run.Stats.Inspected, run.Stats.Failed)

	if len(results) > 0 {
		fmt.Printf("\nResults (%d):\n", len(results))
		fmt.Println(strings.Repeat("-", 60))
		for i, r := range results {
			fmt.Printf("%3d. %s\n", i+1, r.URL)
			if r.Failed {
				fmt.Printf("     %s\n", r.Verdict)
			} else {
				fmt.Printf("     Verdict: %s | Coverage: %s\n", r.Verdict, r.CoverageState)
			}
		}
	}

	return nil
}
