package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/internal/cli"
	"github.com/cognicore/keyroot/pkg/keyroot/store/sqlite"
)

func main() {
	var (
		dbPath   = flag.String("db", "", "SQLite report store (required)")
		id       = flag.String("id", "", "Show the report with this ID")
		listing  = flag.String("listing", "", "Only list reports for this listing")
		limit    = flag.Int("limit", 20, "Maximum number of reports to list")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log, err := cli.NewLogger("keyroot-reports", *logLevel)
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), log, *dbPath, *id, *listing, *limit); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, log *logrus.Entry, dbPath, id, listing string, limit int) error {
	if dbPath == "" {
		return errors.New("--db required")
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath, log.WithField("component", "store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if id != "" {
		report, err := st.GetReport(ctx, id)
		if err != nil {
			return fmt.Errorf("get report: %w", err)
		}
		return cli.WriteJSON(os.Stdout, "", report)
	}

	infos, err := st.ListReports(ctx, listing, limit)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	return cli.WriteJSON(os.Stdout, "", infos)
}
