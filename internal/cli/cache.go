package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
	"github.com/tbourn/go-news-aggregator/internal/services"
	"github.com/tbourn/go-news-aggregator/internal/utils"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the article cache",
	}
	cmd.AddCommand(
		newCacheListCmd(a),
		newCacheStatsCmd(a),
		newCacheRelatedCmd(a),
		newCacheClearCmd(a),
		newCachePruneCmd(a),
	)
	return cmd
}

// withCacheService opens the store for the duration of fn.
func (a *app) withCacheService(fn func(svc *services.CacheService) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(services.NewCacheService(st.DB(), st))
}

func newCacheListCmd(a *app) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached (kind, keywords) entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCacheService(func(svc *services.CacheService) error {
				page = max(page, 1)
				pageSize = utils.Clamp(pageSize, 1, svc.MaxPageSize)
				items, total, err := svc.ListPage(cmd.Context(), page, pageSize)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if total == 0 {
					fmt.Fprintln(out, "Cache is empty.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KIND\tKEYWORDS\tBYTES\tUPDATED")
				for _, it := range items {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.SourceKind, displayKey(it.NormalizedKeywords), it.PayloadBytes, it.UpdatedAt.Local().Format(time.DateTime))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				p := utils.NewPage(page, pageSize, total)
				fmt.Fprintf(out, "page %d/%d, %d entries\n", p.Page, p.TotalPages, p.Total)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "entries per page")
	return cmd
}

func newCacheStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCacheService(func(svc *services.CacheService) error {
				st, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache: %s\n", a.cfg.CachePath)
				fmt.Fprintf(out, "Entries: %d\n", st.Entries)
				if st.LastUpdated != nil {
					fmt.Fprintf(out, "Last updated: %s\n", st.LastUpdated.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func newCacheRelatedCmd(a *app) *cobra.Command {
	var (
		kw []string
		k  int
	)
	cmd := &cobra.Command{
		Use:   "related",
		Short: "Show cached keyword sets similar to --keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCacheService(func(svc *services.CacheService) error {
				results, err := svc.Related(cmd.Context(), kw, k)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "No related entries.")
					return nil
				}
				for _, r := range results {
					fmt.Fprintf(out, "%.2f  %s\n", r.Score, r.Key)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&kw, "keywords", nil, "comma-separated keywords")
	cmd.Flags().IntVar(&k, "k", 5, "max results")
	return cmd
}

func newCacheClearCmd(a *app) *cobra.Command {
	var (
		kind string
		kw   []string
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove one cached (kind, keywords) entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind = strings.ToLower(kind)
			return a.withCacheService(func(svc *services.CacheService) error {
				key := displayKey(keywords.Normalize(kw...))
				err := svc.Delete(cmd.Context(), kind, kw)
				switch {
				case errors.Is(err, services.ErrEntryNotFound):
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing cached for (%s, %s).\n", kind, key)
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared (%s, %s).\n", kind, key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", domain.KindEverything, "source kind")
	cmd.Flags().StringSliceVar(&kw, "keywords", nil, "comma-separated keywords")
	return cmd
}

func newCachePruneCmd(a *app) *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove entries not written within --older-than",
		Long:  "Delete cached entries whose last write is older than the given age (e.g. 7d, 36h).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseAge(olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			return a.withCacheService(func(svc *services.CacheService) error {
				n, err := svc.Prune(cmd.Context(), d)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries older than %s.\n", n, olderThan)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "", "age threshold (e.g. 7d, 36h)")
	_ = cmd.MarkFlagRequired("older-than")
	return cmd
}

// parseAge accepts Go durations plus a whole-day "Nd" form.
func parseAge(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// displayKey renders the empty keyword set readably.
func displayKey(key string) string {
	if key == "" {
		return "(none)"
	}
	return key
}
