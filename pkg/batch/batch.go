// Package batch validates many mzTab files concurrently. Each file is parsed
// by its own reader; only the finished reports are shared.
package batch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/mztab/pkg/logging"
	"github.com/ChrisMcGann/mztab/pkg/metric"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	"github.com/ChrisMcGann/mztab/pkg/writer/sqlite"
)

// Options controls a batch run
type Options struct {
	Reader  reader.Options
	Workers int             // parallel files, 1 if <= 0
	Metrics *metric.Metrics // optional
	Logger  *slog.Logger
}

// Run validates every path and returns one report per path, in input order.
// Per-file failures are recorded in the reports; the returned error is only
// set when ctx is cancelled.
func Run(ctx context.Context, paths []string, opts Options) ([]sqlite.FileReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	reports := make([]sqlite.FileReport, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = validateFile(ctx, path, opts, logging.WithFile(logger, path))
			if opts.Metrics != nil {
				observe(opts.Metrics, reports[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func observe(m *metric.Metrics, r sqlite.FileReport) {
	var items []*mzerror.Error
	if r.Errors != nil {
		items = r.Errors.Items()
	}
	m.ObserveFile(r.Status(), r.File, items, r.Elapsed)
}

func validateFile(ctx context.Context, path string, opts Options, logger *slog.Logger) sqlite.FileReport {
	start := time.Now()
	ropts := opts.Reader
	ropts.Logger = logger

	report := sqlite.FileReport{Path: path}
	res, err := reader.ReadFile(ctx, path, ropts)
	report.Elapsed = time.Since(start)
	report.Err = err
	if res != nil {
		report.File = res.File
		report.Errors = res.Errors
	}

	if err != nil {
		logger.Warn("validation stopped", "error", err, "elapsed", report.Elapsed)
	} else {
		logger.Info("validated", "status", report.Status(), "errors", report.Errors.Len(), "elapsed", report.Elapsed)
	}
	return report
}
