package cli

import (
	"flag"
	"io"
)

const defaultConfigPath = "unusedclass.toml"

type cliOptions struct {
	configPath     string
	configExplicit bool
	watch          bool
	history        bool
	since          string
	historyWindow  string
	historyTSV     string
	historyJSON    string
	failOnUnused   bool
	color          bool
	metricsAddr    string
	query          string
	queryLimit     int
	explain        string
	verbose        bool
	version        bool
	roots          []string
}

func parseOptions(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("unusedclass", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-check when class files change")
	fs.BoolVar(&opts.history, "history", false, "Save a history snapshot and print the trend against the previous run")
	fs.StringVar(&opts.since, "since", "", "Include historical snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend summaries (requires --history)")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write trend report TSV to this path (requires --history)")
	fs.StringVar(&opts.historyJSON, "history-json", "", "Write trend report JSON to this path (requires --history)")
	fs.BoolVar(&opts.failOnUnused, "fail-on-unused", false, "Exit with status 3 when unused classes are found")
	fs.BoolVar(&opts.color, "color", true, "Style the report when writing to a terminal")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides config)")
	fs.StringVar(&opts.query, "query", "", "Print classes matching a CQL query, e.g. 'SELECT classes WHERE unused = 1 AND package = \"com/acme\"'")
	fs.IntVar(&opts.queryLimit, "query-limit", 0, "Optional row limit for --query")
	fs.StringVar(&opts.explain, "explain", "", "Print why a class (internal name, e.g. com/acme/Type) is or is not reported")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.configExplicit = true
		}
	})

	opts.roots = fs.Args()
	return opts, nil
}
