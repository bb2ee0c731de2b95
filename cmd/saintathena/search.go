package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/infrastructure/cache"
	"github.com/saintathena/backend/internal/infrastructure/catalog"
	"github.com/saintathena/backend/internal/infrastructure/ratelimit"
	"github.com/saintathena/backend/internal/logger"
	"github.com/saintathena/backend/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagCatalog    string
	flagList       bool
	flagLimit      int
	flagMinScore   float64
	flagOutOfStock bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search a catalog file and print the JSON response",
	Example: `  saintathena search --catalog catalog.yaml bangus
  saintathena search --catalog catalog.yaml --limit 3 --min-score 60 "atlantic salmon"
  saintathena search --catalog catalog.yaml --list "2 lbs shrimp, salmon and squid"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var suggestCmd = &cobra.Command{
	Use:     "suggest [text...]",
	Short:   "Print category and term suggestions for partial input",
	Example: `  saintathena suggest --catalog catalog.yaml sal`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSuggest,
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, suggestCmd} {
		cmd.Flags().StringVar(&flagCatalog, "catalog", "", "Catalog file (YAML or JSON with a top-level products list)")
		_ = cmd.MarkFlagRequired("catalog")
		rootCmd.AddCommand(cmd)
	}

	registerSearchFlags(searchCmd.Flags())
}

func registerSearchFlags(f *pflag.FlagSet) {
	f.BoolVar(&flagList, "list", false, "Treat the input as a shopping list")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Maximum matches (1-100, default 10)")
	f.Float64Var(&flagMinScore, "min-score", -1, "Minimum score (0-100, default 40)")
	f.BoolVar(&flagOutOfStock, "include-out-of-stock", false, "Include unavailable and out-of-stock products")
}

// newLocalService builds a search service over a file catalog with a process-local cache and no analytics
func newLocalService(cmd *cobra.Command) *usecase.SearchService {
	if flagLogLevel != "" {
		_ = logger.SetLevel(flagLogLevel)
	}
	return usecase.NewSearchService(
		catalog.NewFileSource(flagCatalog),
		cache.NewMemoryCache(time.Minute, 0),
		ratelimit.NewFixedWindow(0, 0),
		nil,
		usecase.SearchServiceConfig{Logger: logger.NewWithWriter(cmd.ErrOrStderr(), "search")},
	)
}

func runSearch(cmd *cobra.Command, args []string) error {
	req := &domain.SearchRequest{
		Query:    strings.Join(args, " "),
		Mode:     domain.ModeSingle,
		ClientID: "cli",
	}
	if flagList {
		req.Mode = domain.ModeList
	}

	opts := &domain.SearchOptionsInput{}
	if flagLimit != 0 {
		opts.Limit = &flagLimit
	}
	if flagMinScore >= 0 {
		opts.MinScore = &flagMinScore
	}
	if flagOutOfStock {
		opts.IncludeOutOfStock = &flagOutOfStock
	}
	req.Options = opts

	resp, err := newLocalService(cmd).Search(cmd.Context(), req)
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, resp)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	resp, err := newLocalService(cmd).Suggest(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, resp)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return fmt.Errorf("invalid input: %w", err)
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return fmt.Errorf("could not read catalog %s: %w", flagCatalog, err)
	default:
		return err
	}
}
