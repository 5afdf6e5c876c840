// Package exporter runs the sitemap-driven, resumable URL inspection export.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/gsc-inspect/models"
	"github.com/dtnitsch/gsc-inspect/pkg/storage"
)

// URLSource lists the page URLs of a sitemap.
type URLSource interface {
	Resolve(ctx context.Context, sitemapURL string) ([]string, error)
}

// Inspector inspects one URL for a site.
type Inspector interface {
	Inspect(ctx context.Context, siteURL, pageURL string) (*models.InspectResponse, error)
}

// Pacer blocks after each processed URL, before the next one starts.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Recorder receives every written row, e.g. for a run ledger.
type Recorder interface {
	RecordResult(row models.Row) error
}

// DelayPacer sleeps a fixed delay, measured from when Wait is called.
type DelayPacer struct {
	Delay time.Duration
}

func (p DelayPacer) Wait(ctx context.Context) error {
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewPacer returns a DelayPacer for delay. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return nil
	}
	return DelayPacer{Delay: delay}
}

// Summary counts what a run did.
type Summary struct {
	Discovered    int  // URLs found in the sitemap
	Considered    int  // after the max cap
	Skipped       int  // already present in the output file
	Inspected     int  // rows written
	Failed        int  // rows written with an error verdict
	HeaderWritten bool // the output file was new
}

type Exporter struct {
	source    URLSource
	inspector Inspector
	pacer     Pacer
	recorder  Recorder
	logger    *slog.Logger
}

func New(source URLSource, inspector Inspector, pacer Pacer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{source: source, inspector: inspector, pacer: pacer, logger: logger}
}

// WithRecorder attaches a Recorder. Recorder errors are logged, never fatal.
func (e *Exporter) WithRecorder(r Recorder) *Exporter {
	e.recorder = r
	return e
}

// Run resolves the sitemap, drops URLs already in the output file and appends
// one row per remaining URL. Failures of a single inspection become error rows;
// sitemap, output file and context errors end the run. On cancellation the
// returned Summary reflects the rows written so far.
func (e *Exporter) Run(ctx context.Context, cfg *models.InspectConfig) (Summary, error) {
	var sum Summary

	urls, err := e.source.Resolve(ctx, cfg.SitemapURL)
	if err != nil {
		return sum, fmt.Errorf("failed to resolve sitemap: %w", err)
	}
	sum.Discovered = len(urls)
	if cfg.MaxURLs > 0 && len(urls) > cfg.MaxURLs {
		urls = urls[:cfg.MaxURLs]
	}
	sum.Considered = len(urls)

	processed, err := storage.LoadProcessed(cfg.OutputPath)
	if err != nil {
		return sum, fmt.Errorf("failed to load processed URLs: %w", err)
	}

	out, err := storage.OpenCSVLog(cfg.OutputPath, models.Columns)
	if err != nil {
		return sum, err
	}
	defer out.Close()
	sum.HeaderWritten = out.HeaderWritten()

	e.logger.Info("Starting inspection",
		"site", cfg.SiteURL,
		"discovered", sum.Discovered,
		"considered", sum.Considered,
		"already_processed", len(processed),
		"output", cfg.OutputPath)

	for i, u := range urls {
		if _, ok := processed[u]; ok {
			sum.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		row, err := e.inspect(ctx, cfg.SiteURL, u)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// Interrupted mid-call: leave the URL for the next run.
				return sum, ctxErr
			}
			e.logger.Warn("Inspection failed", "url", u, "error", err)
			row = models.ErrorRow(u, err)
			sum.Failed++
		}

		if err := out.Append(row.Record()); err != nil {
			return sum, err
		}
		sum.Inspected = out.Rows()
		e.logger.Debug("Wrote row", "index", i+1, "of", sum.Considered, "url", u, "verdict", row.Verdict)

		if e.recorder != nil {
			if err := e.recorder.RecordResult(row); err != nil {
				e.logger.Warn("Failed to record result", "url", u, "error", err)
			}
		}

		// The delay follows every processed URL, so it is a full gap
		// between the end of one call and the start of the next.
		if e.pacer != nil {
			if err := e.pacer.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return sum, ctxErr
				}
				return sum, fmt.Errorf("pacing: %w", err)
			}
		}
	}

	e.logger.Info("Inspection finished",
		"inspected", sum.Inspected,
		"failed", sum.Failed,
		"skipped", sum.Skipped)
	return sum, nil
}

func (e *Exporter) inspect(ctx context.Context, siteURL, pageURL string) (models.Row, error) {
	resp, err := e.inspector.Inspect(ctx, siteURL, pageURL)
	if err != nil {
		return models.Row{}, err
	}
	if resp == nil {
		return models.Row{}, errors.New("empty inspection response")
	}
	return models.RowFromStatus(pageURL, resp.InspectionResult.IndexStatusResult), nil
}
