// Package compare runs the exact counter and the HyperLogLog estimator over the same input and
// reports how far apart they are, how long each took and how much memory each held.
package compare

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/lytics/hll/v2"
	"github.com/lytics/hll/v2/internal/exact"
)

// A Source is a restartable sequence of items. Every call to Each is a separate pass over the
// same items; the item slice is only valid during the callback. Each stops at the first error
// returned by fn and returns it.
type Source interface {
	Each(fn func(item []byte) error) error
}

// batchSize is the number of items handed to a worker at a time when counting in parallel.
const batchSize = 4096

type Options struct {
	Precision uint
	Hasher    hll.Hasher // nil selects hll.DefaultHasher

	// Workers > 1 shards the estimator pass: each worker owns a sketch and the sketches are
	// merged once the source is exhausted.
	Workers int

	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// Result is the outcome of one comparison.
type Result struct {
	Precision uint
	Items     int // items seen by the exact pass, duplicates included

	Exact     int
	ExactTime time.Duration
	// ExactBytes approximates the memory held by the exact set.
	ExactBytes int

	Estimate      float64
	EstimateTime  time.Duration
	EstimateBytes int
	StandardError float64

	Sketch *hll.Hll
}

// RelativeError is |exact - estimate| / exact as a percentage, or 0 when nothing was counted.
func (r *Result) RelativeError() float64 {
	if r.Exact == 0 {
		return 0
	}
	return math.Abs(float64(r.Exact)-r.Estimate) / float64(r.Exact) * 100
}

// Run counts src exactly and then approximately, timing each pass separately.
func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	ex, err := runExact(ctx, src, opts.logger())
	if err != nil {
		return nil, err
	}
	return runApprox(ctx, src, opts, ex)
}

// Sweep compares src at every precision in precisions. The exact pass runs once and is shared by
// all of the results.
func Sweep(ctx context.Context, src Source, precisions []uint, opts Options) ([]*Result, error) {
	ex, err := runExact(ctx, src, opts.logger())
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(precisions))
	for _, p := range precisions {
		o := opts
		o.Precision = p
		r, err := runApprox(ctx, src, o, ex)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

type exactPass struct {
	count, items, bytes int
	elapsed             time.Duration
}

func runExact(ctx context.Context, src Source, logger *log.Logger) (*exactPass, error) {
	logger.Printf("Starting exact count")
	start := time.Now()

	c, items, err := CountExact(ctx, src)
	if err != nil {
		return nil, err
	}
	pass := &exactPass{
		count:   c.UniqueCount(),
		items:   items,
		bytes:   c.SizeInBytes(),
		elapsed: time.Since(start),
	}
	logger.Printf("Exact count finished. Duration: %v, unique items: %d of %d", pass.elapsed,
		pass.count, pass.items)
	return pass, nil
}

func runApprox(ctx context.Context, src Source, opts Options, ex *exactPass) (*Result, error) {
	logger := opts.logger()
	logger.Printf("Starting HyperLogLog count, p=%d, workers=%d", opts.Precision, opts.Workers)
	start := time.Now()

	sketch, err := CountApprox(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	r := &Result{
		Precision:     opts.Precision,
		Items:         ex.items,
		Exact:         ex.count,
		ExactTime:     ex.elapsed,
		ExactBytes:    ex.bytes,
		Estimate:      sketch.Count(),
		EstimateTime:  elapsed,
		EstimateBytes: sketch.SizeInBytes(),
		StandardError: sketch.StandardError(),
		Sketch:        sketch,
	}
	logger.Printf("HyperLogLog count finished. Duration: %v, estimate: %.1f, error: %.2f%%",
		elapsed, r.Estimate, r.RelativeError())
	return r, nil
}

// CountExact makes one pass over src into an exact counter. It also returns the number of items
// seen.
func CountExact(ctx context.Context, src Source) (*exact.Counter, int, error) {
	c := exact.New()
	items := 0
	err := src.Each(func(item []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Add(item)
		items++
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return c, items, nil
}

// CountApprox makes one pass over src into a sketch with the given options.
func CountApprox(ctx context.Context, src Source, opts Options) (*hll.Hll, error) {
	if opts.Workers > 1 {
		return countSharded(ctx, src, opts)
	}

	h, err := hll.NewHllWithHasher(opts.Precision, opts.Hasher)
	if err != nil {
		return nil, err
	}
	err = src.Each(func(item []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.Update(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// countSharded hands batches of items to opts.Workers goroutines, each updating a sketch of its
// own, and merges the sketches at the end.
func countSharded(ctx context.Context, src Source, opts Options) (*hll.Hll, error) {
	shards := make([]*hll.Hll, opts.Workers)
	for i := range shards {
		h, err := hll.NewHllWithHasher(opts.Precision, opts.Hasher)
		if err != nil {
			return nil, err
		}
		shards[i] = h
	}

	batches := make(chan [][]byte, opts.Workers)
	var wg sync.WaitGroup
	for _, shard := range shards {
		wg.Add(1)
		go func(h *hll.Hll) {
			defer wg.Done()
			for batch := range batches {
				for _, item := range batch {
					h.Update(item)
				}
			}
		}(shard)
	}

	batch := make([][]byte, 0, batchSize)
	err := src.Each(func(item []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The source may reuse item once we return.
		batch = append(batch, append([]byte(nil), item...))
		if len(batch) == batchSize {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([][]byte, 0, batchSize)
		}
		return nil
	})
	if err == nil && len(batch) > 0 {
		select {
		case batches <- batch:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	close(batches)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	merged := shards[0]
	for _, shard := range shards[1:] {
		if err := merged.Merge(shard); err != nil {
			return nil, fmt.Errorf("failed to merge shards: %w", err)
		}
	}
	return merged, nil
}
