package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/config"
	"github.com/matsen/cograph/internal/openalex"
	"github.com/matsen/cograph/internal/record"
	"github.com/matsen/cograph/internal/storage"
)

var (
	fetchKind    string
	fetchPerPage int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch work metadata from OpenAlex into records",
	Long: `Fetch work metadata from OpenAlex and store one record per work.

A record holds the entities observed together in one work:
  authorship  the display names of the work's authors
  citation    the ids of the works it references

Re-fetching a work replaces its record of the same kind.
OPENALEX_API_KEY and OPENALEX_MAILTO are read from the environment or a .env file.`,
}

var fetchWorkCmd = &cobra.Command{
	Use:   "work <id>...",
	Short: "Fetch works by OpenAlex id or URL",
	Long: `Fetch works by OpenAlex id or URL.

Examples:
  cog fetch work W1009208869
  cog fetch work https://openalex.org/W2741809807 --kind citation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetchWork,
}

var fetchFilterCmd = &cobra.Command{
	Use:   "filter <filter>",
	Short: "Fetch one page of works matching an OpenAlex filter",
	Long: `Fetch one page of works matching an OpenAlex filter expression.

Examples:
  cog fetch filter institutions.id:I111979921
  cog fetch filter authorships.author.id:A5023888391 --per-page 100`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchFilter,
}

func init() {
	// Load .env file if present (for OPENALEX_API_KEY)
	_ = godotenv.Load()

	fetchCmd.PersistentFlags().StringVar(&fetchKind, "kind", "", "Record kind: authorship or citation (default from config)")
	fetchFilterCmd.Flags().IntVar(&fetchPerPage, "per-page", 0, "Works per page, 1-200 (default from config)")

	fetchCmd.AddCommand(fetchWorkCmd)
	fetchCmd.AddCommand(fetchFilterCmd)
	rootCmd.AddCommand(fetchCmd)
}

// FetchResult is the response for fetch commands.
type FetchResult struct {
	Kind     string   `json:"kind"`
	Works    int      `json:"works"`
	Added    int      `json:"added"`
	Replaced int      `json:"replaced"`
	Total    int      `json:"total_records"`
	Sources  []string `json:"sources"`
}

func runFetchWork(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	kind := mustResolveKind(fetchKind, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newOpenAlexClient(cfg)
	logger.Info("fetching works", "count", len(args), "kind", kind)

	works, err := client.GetWorks(ctx, args, cfg.Concurrency)
	if err != nil {
		exitWithFetchError(err)
	}

	return storeFetched(repoRoot, works, kind)
}

func runFetchFilter(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	kind := mustResolveKind(fetchKind, cfg)

	perPage := cfg.PerPage
	if fetchPerPage != 0 {
		if err := config.ValidatePerPage(fetchPerPage); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		perPage = fetchPerPage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newOpenAlexClient(cfg)
	page, err := client.ListWorks(ctx, args[0], perPage)
	if err != nil {
		exitWithFetchError(err)
	}
	logger.Info("listed works", "filter", args[0], "matched", page.Meta.Count, "page", len(page.Results))

	works := make([]*openalex.Work, len(page.Results))
	for i := range page.Results {
		works[i] = &page.Results[i]
	}

	return storeFetched(repoRoot, works, kind)
}

// storeFetched extracts records from works and merges them into records.jsonl.
func storeFetched(repoRoot string, works []*openalex.Work, kind record.Kind) error {
	recs, err := openalex.RecordsFor(works, kind)
	if err != nil {
		exitWithFetchError(err)
	}

	result, err := mergeIntoRecordsFile(config.RecordsPath(repoRoot), recs)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	result.Kind = string(kind)
	result.Works = len(works)

	if humanOutput {
		fmt.Printf("Fetched %s: %d added, %d replaced (%s total)\n",
			pluralize(result.Works, "work"), result.Added, result.Replaced, pluralize(result.Total, "record"))
		fmt.Println("Run 'cog rebuild' to update the graph.")
	} else {
		outputJSON(result)
	}
	return nil
}

// mergeIntoRecordsFile folds recs into the JSONL file at path.
func mergeIntoRecordsFile(path string, recs []record.Record) (FetchResult, error) {
	existing, err := storage.ReadAllRecords(path)
	if err != nil {
		return FetchResult{}, fmt.Errorf("reading records: %w", err)
	}

	merged, res := storage.MergeRecords(existing, recs)
	if res.Replaced == 0 {
		err = storage.AppendRecords(path, merged[len(existing):])
	} else {
		err = storage.WriteAllRecords(path, merged)
	}
	if err != nil {
		return FetchResult{}, fmt.Errorf("writing records: %w", err)
	}

	sources := make([]string, len(recs))
	for i, r := range recs {
		sources[i] = r.Source
	}
	return FetchResult{
		Added:    res.Added,
		Replaced: res.Replaced,
		Total:    len(merged),
		Sources:  sources,
	}, nil
}

// newOpenAlexClient builds a client from repository, global and env config.
func newOpenAlexClient(cfg *config.Config) *openalex.Client {
	opts := []openalex.ClientOption{
		openalex.WithTimeout(cfg.Timeout()),
		openalex.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openalex.WithBaseURL(cfg.BaseURL))
	}
	if mailto := config.ResolveMailto(cfg); mailto != "" {
		opts = append(opts, openalex.WithMailto(mailto))
	}
	if key := config.GetAPIKey(); key != "" {
		opts = append(opts, openalex.WithAPIKey(key))
	}
	return openalex.NewClient(opts...)
}

// mustResolveKind returns the --kind flag value or the configured default.
func mustResolveKind(flag string, cfg *config.Config) record.Kind {
	s := flag
	if s == "" {
		s = cfg.DefaultKind
	}
	kind, err := record.ParseKind(s)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return kind
}

// exitWithFetchError maps retrieval errors to exit codes.
func exitWithFetchError(err error) {
	switch {
	case openalex.IsNotFound(err):
		exitWithError(ExitNotFound, "%v", err)
	case errors.Is(err, openalex.ErrMalformedWork), errors.Is(err, openalex.ErrInvalidResponse):
		exitWithError(ExitDataError, "%v", err)
	case errors.Is(err, context.Canceled):
		exitWithError(ExitError, "interrupted")
	default:
		exitWithError(ExitAPIError, "%v", err)
	}
}
