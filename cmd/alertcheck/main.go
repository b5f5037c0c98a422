// Command alertcheck runs one poll cycle, or classifies a saved feed document,
// and prints the ranked alert list. It uses the same fetch, parse, classify,
// and rank code as the service.
//
// Usage:
//
//	go run ./cmd/alertcheck -regions on61,qc147 -lang en
//	go run ./cmd/alertcheck -file on61_e.xml -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/weather-alert-feed/internal/adapter/feed"
	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
	"github.com/couchcryptid/weather-alert-feed/internal/pipeline"
)

type options struct {
	host             string
	lang             string
	regions          string
	file             string
	keepPlaceholders bool
	asJSON           bool
	timeout          time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.host, "host", "weather.gc.ca", "feed host")
	flag.StringVar(&opts.lang, "lang", "en", "language tag")
	flag.StringVar(&opts.regions, "regions", "", "comma separated region codes")
	flag.StringVar(&opts.file, "file", "", "classify a saved feed document instead of fetching")
	flag.BoolVar(&opts.keepPlaceholders, "placeholders", false, "keep \"no alerts in effect\" entries")
	flag.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	flag.DurationVar(&opts.timeout, "timeout", feed.DefaultTimeout, "per-feed fetch timeout")
	flag.Parse()

	if opts.file == "" && opts.regions == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(context.Background(), opts, os.Stdout, os.Stderr))
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	var (
		alerts   []domain.Alert
		failures int
	)

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: read feed: %v\n", err)
			return 1
		}
		records, err := feed.Parse(opts.file, data)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		alerts, _ = domain.ClassifyAll(records, opts.keepPlaceholders)
		alerts = domain.Rank(alerts)
	} else {
		logger := observability.NewLoggerTo(stderr, &config.Config{LogLevel: "warn", LogFormat: "text"})
		metrics := observability.NewStandaloneMetrics()
		coordinator := pipeline.NewCoordinator(feed.NewClient(opts.timeout, "weather-alert-feed-alertcheck/1.0"), feed.Parse, 0, logger, metrics)

		locators := domain.BuildLocators(domain.ParseRegionCodes(opts.regions), opts.lang)
		res := coordinator.Collect(ctx, opts.host, locators)
		alerts, _ = domain.ClassifyAll(res.Records, opts.keepPlaceholders)
		alerts = domain.Rank(alerts)
		failures = len(res.Failures)
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(alerts); err != nil {
			fmt.Fprintf(stderr, "FATAL: encode: %v\n", err)
			return 1
		}
	} else {
		printTable(stdout, alerts, opts.lang)
	}

	if failures > 0 {
		fmt.Fprintf(stderr, "%d feed(s) failed\n", failures)
		return 2
	}
	return 0
}

func printTable(w io.Writer, alerts []domain.Alert, lang string) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "no alerts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tKIND\tEVENT\tREGION\tISSUED")
	for _, a := range alerts {
		text := a.Display(lang)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.Severity, a.AlertKind, a.EventType, a.RegionLabel, strings.TrimPrefix(text.Issued, "Issued "))
	}
	tw.Flush()
}
