package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/cognicore/keyroot/internal/cli"
	"github.com/cognicore/keyroot/internal/research"
	"github.com/cognicore/keyroot/pkg/keyroot"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
)

func main() {
	var (
		draft       = flag.String("draft", "", "Drafted title")
		draftFile   = flag.String("draft-file", "", "File holding the drafted title")
		claimed     = flag.String("claimed", "", "Comma-separated keywords the draft claims to include")
		claimedFile = flag.String("claimed-file", "", "File with one claimed keyword per line")
		pool        = flag.String("pool", "", "Optional keyword research file to pad from")
		minLen      = flag.Int("min-len", -1, "Minimum title length (default: settings)")
		maxLen      = flag.Int("max-len", -1, "Maximum title length (default: settings)")
		outPath     = flag.String("out", "", "Write the result here instead of stdout")
		logLevel    = flag.String("log-level", "info", "Log level")
		cfgFlags    cli.ConfigFlags
	)
	cfgFlags.Register(flag.CommandLine)
	flag.Parse()

	log, err := cli.NewLogger("title-reconcile", *logLevel)
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}

	text := *draft
	if *draftFile != "" {
		data, err := os.ReadFile(*draftFile)
		if err != nil {
			log.Fatalf("read draft: %v", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		log.Fatal("--draft or --draft-file required")
	}

	keywords := splitList(*claimed)
	if *claimedFile != "" {
		lines, err := readLines(*claimedFile)
		if err != nil {
			log.Fatalf("read claimed keywords: %v", err)
		}
		keywords = append(keywords, lines...)
	}

	components, err := cfgFlags.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}
	cli.LogComponents(log, components)
	if *minLen >= 0 {
		components.Settings.Reconcile.MinLen = *minLen
	}
	if *maxLen >= 0 {
		components.Settings.Reconcile.MaxLen = *maxLen
	}

	var records []keyword.Record
	if *pool != "" {
		res, err := research.NewLoader(false, log.WithField("component", "research")).LoadFile(*pool)
		if err != nil {
			log.Fatalf("load pool: %v", err)
		}
		records = res.Records
	}

	eng, err := keyroot.FromComponents(components, nil, log.WithField("component", "engine"))
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}

	result, err := eng.Reconcile(text, keywords, records)
	if err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	if result.Partial() {
		log.WithField("shortfall", result.Shortfall).Warn("title is shorter than the minimum length")
	}

	if err := cli.WriteJSON(os.Stdout, *outPath, result); err != nil {
		log.Fatalf("write result: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
