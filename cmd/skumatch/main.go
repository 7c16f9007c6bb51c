// Command skumatch runs batch matching and inspects normalization and scores
// from the command line.
//
//	skumatch match -catalog mx_catalog.csv -listings ./scraped -country MX -date 2024-03-05
//	skumatch normalize < names.txt
//	skumatch score "Coca Cola 600 ml" "COCA COLA 600ML"
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pricelens/skumatch/config"
	"github.com/pricelens/skumatch/internal/bootstrap"
	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/infrastructure/ingest"
	"github.com/pricelens/skumatch/internal/infrastructure/logging"
	"github.com/pricelens/skumatch/internal/usecase"
)

const usage = `usage: skumatch <command> [flags]

commands:
  match      match scraped listings against a catalog and store the results
  normalize  print the normalized form of each stdin line
  score      explain the confidence between two names
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "skumatch: %v\n", err)
		return 1
	}

	var cmdErr error
	switch args[0] {
	case "match":
		cmdErr = runMatch(ctx, cfg, args[1:], stdout, stderr)
	case "normalize":
		cmdErr = runNormalize(cfg, args[1:], stdin, stdout)
	case "score":
		cmdErr = runScore(cfg, args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "skumatch: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if errors.Is(cmdErr, flag.ErrHelp) {
		return 0
	}
	if cmdErr != nil {
		fmt.Fprintf(stderr, "skumatch %s: %v\n", args[0], cmdErr)
		return 1
	}
	return 0
}

func runMatch(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(stderr)
	catalogPath := fs.String("catalog", "", "Catalog CSV (country, sku, sku_name)")
	listingsDir := fs.String("listings", "", "Directory of scraped <s>-separated listing files")
	country := fs.String("country", "", "Country code to match (empty matches all)")
	dateFlag := fs.String("date", time.Now().Format("2006-01-02"), "Batch date (YYYY-MM-DD)")
	reprocess := fs.Bool("reprocess", false, "Match competitors already stored for the date")
	dryRun := fs.Bool("dry-run", false, "Do not read or write the match store")
	dsn := fs.String("db", "", "Override storage DSN")
	outPath := fs.String("out", "", "Optional path to write match records as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *catalogPath == "" || *listingsDir == "" {
		return fmt.Errorf("-catalog and -listings are required")
	}
	date, err := time.Parse("2006-01-02", *dateFlag)
	if err != nil {
		return fmt.Errorf("invalid -date %q: %w", *dateFlag, err)
	}

	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}

	catalog, err := ingest.NewCatalogReader(ingest.CatalogReaderConfig{
		DefaultCountry: *country,
		Countries:      cfg.Ingest.Countries,
	}).ReadFile(*catalogPath)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	_, cached, err := bootstrap.Normalizers(cfg.Normalizer)
	if err != nil {
		return err
	}
	matcher := bootstrap.Matcher(cfg.Matching, logger)

	var repo domain.MatchRepository
	var skip []string
	if !*dryRun {
		storageCfg := cfg.Storage
		if *dsn != "" {
			storageCfg.DSN = *dsn
		}
		store, err := bootstrap.Store(ctx, storageCfg)
		if err != nil {
			return err
		}
		defer store.Close()
		repo = store

		if !*reprocess && *country != "" {
			if skip, err = store.ProcessedCompetitors(ctx, *country, date); err != nil {
				return err
			}
		}
	}

	listings, failed, err := ingest.NewListingReader("").ReadDir(*listingsDir, skip)
	if err != nil {
		return fmt.Errorf("reading listings: %w", err)
	}
	for path, ferr := range failed {
		logger.Warn().Str("file", path).Err(ferr).Msg("listing file skipped")
	}

	pipeline := usecase.NewPipelineService(cached, matcher, repo, logger)
	res, err := pipeline.Run(ctx, usecase.RunRequest{
		Country:   *country,
		Date:      date,
		Catalog:   catalog,
		Listings:  listings,
		Reprocess: *reprocess,
		DryRun:    *dryRun,
	})
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := writeRecords(*outPath, res.Records); err != nil {
			return err
		}
	}

	skipped := append(append([]string(nil), skip...), res.Skipped...)
	printSummary(stdout, res, skipped, len(failed))
	return nil
}

func printSummary(w io.Writer, res *usecase.RunResult, skipped []string, failedFiles int) {
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "  catalog entries:  %s\n", humanize.Comma(int64(res.Catalog)))
	fmt.Fprintf(w, "  listings:         %s (%s distinct names)\n", humanize.Comma(int64(res.Listings)), humanize.Comma(int64(res.Keys)))
	fmt.Fprintf(w, "  evaluations:      %s\n", humanize.Comma(int64(res.Evaluations)))
	fmt.Fprintf(w, "  matches:          %s\n", humanize.Comma(int64(len(res.Records))))
	if len(skipped) > 0 {
		sort.Strings(skipped)
		fmt.Fprintf(w, "  skipped:          %s\n", strings.Join(skipped, ", "))
	}
	if failedFiles > 0 {
		fmt.Fprintf(w, "  unreadable files: %d\n", failedFiles)
	}
	fmt.Fprintf(w, "  duration:         %s\n", res.Duration.Round(time.Millisecond))
}

func writeRecords(path string, records []domain.MatchRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runNormalize(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	trace := fs.Bool("trace", false, "Print the output of every stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, cached, err := bootstrap.Normalizers(cfg.Normalizer)
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		line := sc.Text()
		if !*trace {
			fmt.Fprintln(stdout, cached.Normalize(line))
			continue
		}
		for _, step := range n.Trace(line) {
			fmt.Fprintf(stdout, "%-14s %s\n", step.Stage, step.Output)
		}
		fmt.Fprintln(stdout)
	}
	return sc.Err()
}

func runScore(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	normalized := fs.Bool("normalized", false, "Inputs are already normalized")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("expected two names, got %d", fs.NArg())
	}

	_, cached, err := bootstrap.Normalizers(cfg.Normalizer)
	if err != nil {
		return err
	}
	left, right := fs.Arg(0), fs.Arg(1)
	if !*normalized {
		left, right = cached.Normalize(left), cached.Normalize(right)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(bootstrap.Scorer(cfg.Matching).Explain(left, right))
}
