// Package cli implements the newsagg command tree.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-aggregator/internal/cache"
	"github.com/tbourn/go-news-aggregator/internal/config"
	"github.com/tbourn/go-news-aggregator/internal/newsapi"
	"github.com/tbourn/go-news-aggregator/internal/services"
	"github.com/tbourn/go-news-aggregator/internal/sysutil"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo records build metadata injected through -ldflags.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// newFetcher builds the upstream client. Tests replace it.
var newFetcher = func(cfg config.NewsAPIConfig) services.Fetcher {
	return newsapi.New(
		newsapi.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Language: cfg.Language,
			SortBy:   cfg.SortBy,
			Page:     cfg.Page,
			PageSize: cfg.PageSize,
			Country:  cfg.Country,
			Sources:  cfg.Sources,
		},
		newsapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		newsapi.WithRateLimit(cfg.RPS, 1),
		newsapi.WithLogger(log.With().Str("component", "newsapi").Logger()),
	)
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfg config.Config

	flagCache    string
	flagLogLevel string
}

// openStore opens the cache file selected by --cache or CACHE_PATH.
func (a *app) openStore() (*cache.Store, error) {
	st, err := cache.Open(a.cfg.CachePath, cache.WithLogger(log.With().Str("component", "cache").Logger()))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return st, nil
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "newsagg",
		Short:         "Keyword-normalized news article cache",
		Long:          "newsagg fetches articles from newsapi.org and caches them in SQLite, keyed by source kind and an order- and case-insensitive keyword set.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg.CachePath = sysutil.FirstNonEmpty(a.flagCache, cfg.CachePath)
			cfg.LogLevel = sysutil.FirstNonEmpty(a.flagLogLevel, cfg.LogLevel)
			a.cfg = cfg
			sysutil.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.flagCache, "cache", "", "path to the SQLite cache (overrides CACHE_PATH)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newFetchCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsagg %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}
