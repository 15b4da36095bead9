package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/services"
)

// fetchOutput is the JSON document printed by `newsagg fetch`.
type fetchOutput struct {
	Kind      string           `json:"kind"`
	Keywords  string           `json:"keywords"`
	FromCache bool             `json:"from_cache"`
	Count     int              `json:"count"`
	Articles  []domain.Article `json:"articles"`
}

func newFetchCmd(a *app) *cobra.Command {
	var (
		kind  string
		kw    []string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Look up articles through the cache and print them as JSON",
		Example: `  newsagg fetch --keywords nvidia,ai
  newsagg fetch --kind headlines --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireNewsAPIKey(); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			svc := services.NewArticleService(st, newFetcher(a.cfg.NewsAPI))
			svc.Limit = a.cfg.MaxArticles

			res, err := svc.Lookup(cmd.Context(), strings.ToLower(kind), kw, limit)
			if err != nil {
				return err
			}
			if res.CacheError != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: articles were not cached: %v\n", res.CacheError)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fetchOutput{
				Kind:      res.Kind,
				Keywords:  res.Keywords,
				FromCache: res.FromCache,
				Count:     len(res.Articles),
				Articles:  res.Articles,
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", domain.KindEverything, "source kind: everything, headlines or all")
	cmd.Flags().StringSliceVar(&kw, "keywords", nil, "comma-separated keywords")
	cmd.Flags().IntVar(&limit, "limit", 0, "max articles kept on a fetch (default MAX_ARTICLES)")
	return cmd
}
