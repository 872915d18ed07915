// Command hllcompare counts the distinct client addresses of an access log exactly and with
// HyperLogLog, and prints how the two compare.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/lytics/hll/v2/internal/accesslog"
	"github.com/lytics/hll/v2/internal/compare"
	"github.com/lytics/hll/v2/internal/config"
	"github.com/lytics/hll/v2/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	logPath := flag.String("log", "", "access log to read (default from config)")
	field := flag.String("field", "", `JSON field holding the address, "-" for one address per line`)
	precision := flag.Uint("p", 0, "HyperLogLog precision, 4 to 18")
	hasher := flag.String("hasher", "", "hash function: farm, fnv, metro, murmur3 or xxhash")
	workers := flag.Int("workers", 0, "goroutines for the HyperLogLog pass")
	sweep := flag.String("sweep", "", "compare a range of precisions, e.g. 4-18")
	html := flag.String("html", "", "write an HTML chart of the sweep to this file")
	save := flag.String("save", "", "write the binary sketch state to this file")
	progress := flag.Bool("progress", false, "show a progress bar while reading")
	logFile := flag.String("logfile", "", "append log messages to this file instead of stderr")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log":
			cfg.Log.Path = *logPath
		case "field":
			cfg.Log.Field = *field
		case "p":
			cfg.Estimator.Precision = *precision
		case "hasher":
			cfg.Estimator.Hasher = *hasher
		case "workers":
			cfg.Estimator.Workers = *workers
		case "html":
			cfg.Report.HTML = *html
		case "save":
			cfg.Report.State = *save
		case "progress":
			cfg.Log.Progress = *progress
		case "logfile":
			cfg.Report.LogFile = *logFile
		}
	})
	if cfg.Log.Field == "-" {
		cfg.Log.Field = ""
	}
	if *sweep != "" {
		precisions, err := parseRange(*sweep)
		if err != nil {
			log.Fatalf("Invalid -sweep: %v", err)
		}
		cfg.Estimator.Sweep = precisions
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Report.LogFile != "" {
		f, err := os.OpenFile(cfg.Report.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error: file '%s' not found.\n", cfg.Log.Path)
		}
		fmt.Fprintf(os.Stderr, "Cannot run the comparison, check the log file: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	hash, err := cfg.Hasher()
	if err != nil {
		return err
	}

	src := &accesslog.File{Path: cfg.Log.Path, Field: cfg.Log.Field, Progress: cfg.Log.Progress}
	opts := compare.Options{
		Precision: cfg.Estimator.Precision,
		Hasher:    hash,
		Workers:   cfg.Estimator.Workers,
		Logger:    log.Default(),
	}

	log.Printf("Reading %s (field %q), hasher %s", cfg.Log.Path, cfg.Log.Field, cfg.Estimator.Hasher)

	if len(cfg.Estimator.Sweep) > 0 {
		results, err := compare.Sweep(ctx, src, cfg.Estimator.Sweep, opts)
		if err != nil {
			return err
		}
		logStats(src)
		if err := report.WriteSweepTable(os.Stdout, results); err != nil {
			return err
		}
		if cfg.Report.HTML != "" {
			if err := writeHTML(cfg.Report.HTML, results); err != nil {
				return err
			}
			log.Printf("Sweep chart written to %s", cfg.Report.HTML)
		}
		return saveState(cfg.Report.State, results[len(results)-1])
	}

	result, err := compare.Run(ctx, src, opts)
	if err != nil {
		return err
	}
	logStats(src)
	if err := report.WriteTable(os.Stdout, result); err != nil {
		return err
	}
	return saveState(cfg.Report.State, result)
}

func logStats(src *accesslog.File) {
	stats := src.Stats()
	log.Printf("Lines: %d, addresses: %d, skipped: %d", stats.Lines, stats.Items, stats.Skipped)
}

func writeHTML(path string, results []*compare.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.RenderHTML(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveState(path string, r *compare.Result) error {
	if path == "" {
		return nil
	}
	buf, err := r.Sketch.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to save sketch: %w", err)
	}
	log.Printf("Sketch (p=%d, %d bytes) saved to %s", r.Precision, len(buf), path)
	return nil
}

// parseRange parses "4-18" or "4,8,12" into a list of precisions.
func parseRange(s string) ([]uint, error) {
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		from, err := strconv.ParseUint(lo, 10, 8)
		if err != nil {
			return nil, err
		}
		to, err := strconv.ParseUint(hi, 10, 8)
		if err != nil {
			return nil, err
		}
		if from > to {
			return nil, fmt.Errorf("empty range %s", s)
		}
		out := make([]uint, 0, to-from+1)
		for p := from; p <= to; p++ {
			out = append(out, uint(p))
		}
		return out, nil
	}

	var out []uint
	for _, part := range strings.Split(s, ",") {
		p, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, uint(p))
	}
	return out, nil
}
