package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/internal/cli"
	"github.com/cognicore/keyroot/internal/listing"
	"github.com/cognicore/keyroot/internal/research"
	"github.com/cognicore/keyroot/pkg/keyroot"
	"github.com/cognicore/keyroot/pkg/keyroot/store"
	"github.com/cognicore/keyroot/pkg/keyroot/store/sqlite"
)

type options struct {
	listing  string
	keywords string
	name     string
	db       string
	strict   bool
	top      int
	out      string
	config   cli.ConfigFlags
}

func main() {
	var (
		opts     options
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.StringVar(&opts.listing, "listing", "", "Listing JSON or saved product page HTML (required)")
	flag.StringVar(&opts.keywords, "keywords", "", "Keyword research CSV/TSV/JSONL (required)")
	flag.StringVar(&opts.name, "name", "", "Listing name (default: ASIN or file name)")
	flag.StringVar(&opts.db, "db", "", "Optional SQLite file to store the report in")
	flag.BoolVar(&opts.strict, "strict", false, "Fail on any invalid keyword row")
	flag.IntVar(&opts.top, "top", 0, "Number of priority roots (default: settings roots.top_n)")
	flag.StringVar(&opts.out, "out", "", "Write the report here instead of stdout")
	opts.config.Register(flag.CommandLine)
	flag.Parse()

	log, err := cli.NewLogger("keyroot-analyze", *logLevel)
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), log, opts); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, log *logrus.Entry, opts options) error {
	if opts.listing == "" || opts.keywords == "" {
		return errors.New("--listing and --keywords are required")
	}

	components, err := opts.config.Load()
	if err != nil {
		return fmt.Errorf("load configs: %w", err)
	}
	cli.LogComponents(log, components)
	if opts.top > 0 {
		components.Settings.Roots.TopN = opts.top
	}

	l, err := listing.LoadFile(opts.listing)
	if err != nil {
		return fmt.Errorf("load listing: %w", err)
	}
	if opts.name != "" {
		l.Name = opts.name
	}

	res, err := research.NewLoader(opts.strict, log.WithField("component", "research")).LoadFile(opts.keywords)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}

	var st store.Store
	if opts.db != "" {
		st, err = sqlite.OpenSQLite(ctx, opts.db, log.WithField("component", "store"))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}

	eng, err := keyroot.FromComponents(components, st, log.WithField("component", "engine"))
	if err != nil {
		if st != nil {
			st.Close()
		}
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	report, err := eng.Analyze(ctx, l.Name, l.Units, res.Records)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := cli.WriteJSON(os.Stdout, opts.out, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
