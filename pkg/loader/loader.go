// Package loader decodes every plugin of a load order concurrently. The
// load order is immutable and shared by all workers; each file gets its
// own decode with no other shared state.
package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/metrics"
	"github.com/ssargent/espkit/pkg/plugin"
)

// Options controls a load.
type Options struct {
	// Dir holds the plugin files named by the load order.
	Dir string
	// Workers bounds the number of files decoded at once. Zero means
	// GOMAXPROCS.
	Workers         int
	ContinueOnError bool
	Registry        *plugin.Registry
	Logger          *slog.Logger
	Metrics         *metrics.Decode
}

// Result holds the decoded files in load order.
type Result struct {
	LoadOrder *formid.LoadOrder
	Files     []*plugin.File
}

// File returns the decoded file named name, matched case-insensitively.
func (r *Result) File(name string) (*plugin.File, bool) {
	i, ok := r.LoadOrder.Index(name)
	if !ok {
		return nil, false
	}
	return r.Files[i], true
}

// Load decodes the named plugins from opts.Dir. Cancellation is checked
// before each file starts; a file already being decoded runs to the end.
// The first failure cancels the files not yet started and is returned.
func Load(ctx context.Context, names []string, opts Options) (*Result, error) {
	if len(names) == 0 {
		return nil, errors.New("empty load order")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	lo := formid.NewLoadOrder(names...)
	decodeOpts := plugin.Options{
		ContinueOnError: opts.ContinueOnError,
		LoadOrder:       lo,
		Registry:        opts.Registry,
		Logger:          logger,
		Metrics:         opts.Metrics,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type item struct {
		file *plugin.File
		err  error
	}
	items := make([]item, len(names))
	sem := make(chan struct{}, workers)
	start := time.Now()

	var wg sync.WaitGroup
	for i, name := range names {
		select {
		case <-ctx.Done():
			items[i].err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				items[i].err = err
				return
			}

			f, err := plugin.DecodeFile(filepath.Join(opts.Dir, name), decodeOpts)
			if err != nil {
				items[i].err = errors.Wrapf(err, "load %s", name)
				cancel()
				return
			}
			items[i].file = f
			logger.Info("loaded plugin", "plugin", name, "records", len(f.Records), "failures", len(f.Failures))
		}(i, name)
	}
	wg.Wait()

	res := &Result{LoadOrder: lo, Files: make([]*plugin.File, len(names))}
	var firstErr error
	for i, it := range items {
		if it.err == nil {
			res.Files[i] = it.file
			continue
		}
		// Prefer a real decode failure over the cancellations it caused.
		if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(it.err, context.Canceled)) {
			firstErr = it.err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	logger.Info("load order decoded", "plugins", len(names), "duration", time.Since(start))
	return res, nil
}
