package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/gsc-inspect/internal/common"
	"github.com/dtnitsch/gsc-inspect/models"
	"github.com/dtnitsch/gsc-inspect/pkg/auth"
	"github.com/dtnitsch/gsc-inspect/pkg/caching"
	"github.com/dtnitsch/gsc-inspect/pkg/db"
	"github.com/dtnitsch/gsc-inspect/pkg/exporter"
	"github.com/dtnitsch/gsc-inspect/pkg/fetcher"
	"github.com/dtnitsch/gsc-inspect/pkg/inspection"
	"github.com/dtnitsch/gsc-inspect/pkg/sitemap"
	"github.com/urfave/cli/v2"
)

// exitInterrupted matches the shell convention for SIGINT.
const exitInterrupted = 130

// authorizationTimeout bounds the wait for the browser consent redirect.
const authorizationTimeout = 5 * time.Minute

func configFromFlags(c *cli.Context) (*models.InspectConfig, error) {
	site, err := common.ValidateSiteURL(c.String("site"))
	if err != nil {
		return nil, fmt.Errorf("--site: %w", err)
	}
	sitemapURL, err := common.ValidateHTTPURL(c.String("sitemap"))
	if err != nil {
		return nil, fmt.Errorf("--sitemap: %w", err)
	}
	if c.Int("max") < 0 {
		return nil, errors.New("--max must not be negative")
	}
	sleep := c.Float64("sleep")
	if sleep < 0 {
		return nil, errors.New("--sleep must not be negative")
	}
	if c.Int("qpm") < 0 {
		return nil, errors.New("--qpm must not be negative")
	}

	return &models.InspectConfig{
		SiteURL:          site,
		SitemapURL:       sitemapURL,
		CredentialsPath:  c.String("creds"),
		TokenPath:        c.String("token"),
		OutputPath:       c.String("out"),
		MaxURLs:          c.Int("max"),
		Delay:            time.Duration(sleep * float64(time.Second)),
		QueriesPerMinute: c.Int("qpm"),
		DBPath:           c.String("db"),
		SitemapCacheDir:  c.String("sitemap-cache"),
		SitemapCacheTTL:  c.Duration("sitemap-cache-ttl"),
	}, nil
}

func InspectAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := configFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	oauthConfig, err := auth.LoadConfig(config.CredentialsPath)
	if err != nil {
		logger.Error("failed to load client credentials", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFatal)
	}
	flow := auth.NewFlow(oauthConfig, auth.NewTokenStore(config.TokenPath),
		&auth.LoopbackAuthorizer{Timeout: authorizationTimeout}, logger)
	httpClient, err := flow.Client(ctx)
	if err != nil {
		logger.Error("failed to obtain credentials", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFatal)
	}

	source := sitemap.NewResolver(sitemapGetter(logger, config), logger)
	inspector := inspection.NewClient(httpClient).WithQuota(config.QueriesPerMinute)
	return runInspect(ctx, logger, config, source, inspector)
}

// runInspect runs the export, records it in the ledger when --db is set and
// maps the outcome to an exit error.
func runInspect(ctx context.Context, logger *slog.Logger, config *models.InspectConfig,
	source exporter.URLSource, inspector exporter.Inspector) error {
	exp := exporter.New(source, inspector, exporter.NewPacer(config.Delay), logger)

	ledger, runID := openLedger(logger, config)
	if ledger != nil {
		defer ledger.Close()
		exp.WithRecorder(ledger.Recorder(runID))
	}

	summary, runErr := exp.Run(ctx, config)
	if ledger != nil {
		finishLedger(logger, ledger, runID, summary, runErr)
	}

	if errors.Is(runErr, context.Canceled) {
		logger.Warn("Interrupted; rerun to resume", "inspected", summary.Inspected, "output", config.OutputPath)
		return cli.Exit("Interrupted", exitInterrupted)
	}
	if runErr != nil {
		logger.Error("inspect failed", "error", runErr)
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), common.ExitFatal)
	}

	fmt.Printf("Inspected %d URLs (%d failed), skipped %d already recorded, %d discovered.\n",
		summary.Inspected, summary.Failed, summary.Skipped, summary.Discovered)
	if summary.HeaderWritten {
		fmt.Printf("Output: %s (new file)\n", config.OutputPath)
	} else {
		fmt.Printf("Output: %s (appended)\n", config.OutputPath)
	}
	if ledger != nil {
		fmt.Printf("\nTip: Use 'gsc-inspect history --db %s %d' to see details\n", config.DBPath, runID)
	}
	return nil
}

// sitemapGetter wraps the HTTP fetcher in the on-disk cache when
// --sitemap-cache is set. A cache that can't be created is skipped.
func sitemapGetter(logger *slog.Logger, config *models.InspectConfig) sitemap.Getter {
	f := fetcher.NewFetcher()
	if config.SitemapCacheDir == "" {
		return f
	}
	cache, err := caching.NewCache(config.SitemapCacheDir, config.SitemapCacheTTL)
	if err != nil {
		logger.Warn("Sitemap cache disabled", "path", config.SitemapCacheDir, "error", err)
		return f
	}
	return caching.NewCachedGetter(f, cache, logger)
}

// openLedger opens the run ledger when --db is set. Ledger problems never
// stop an inspection.
func openLedger(logger *slog.Logger, config *models.InspectConfig) (*db.DB, int64) {
	if config.DBPath == "" {
		return nil, 0
	}
	ledger, err := db.Open(config.DBPath)
	if err != nil {
		logger.Warn("Run ledger disabled", "path", config.DBPath, "error", err)
		return nil, 0
	}
	runID, err := ledger.CreateRun(config.SiteURL, config.SitemapURL, config.OutputPath)
	if err != nil {
		logger.Warn("Run ledger disabled", "path", config.DBPath, "error", err)
		_ = ledger.Close()
		return nil, 0
	}
	logger.Debug("Recording run", "run_id", runID, "db", config.DBPath)
	return ledger, runID
}

func finishLedger(logger *slog.Logger, ledger *db.DB, runID int64, s exporter.Summary, runErr error) {
	status := db.RunStatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled):
		status = db.RunStatusInterrupted
	case runErr != nil:
		status = db.RunStatusFailed
	}
	stats := db.RunStats{
		Discovered: s.Discovered,
		Considered: s.Considered,
		Skipped:    s.Skipped,
		Inspected:  s.Inspected,
		Failed:     s.Failed,
	}
	if err := ledger.FinishRun(runID, stats, status); err != nil {
		logger.Warn("Failed to finish run record", "run_id", runID, "error", err)
	}
}
