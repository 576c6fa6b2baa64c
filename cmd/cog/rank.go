package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/cooccur"
)

var rankLimit int

func init() {
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", DefaultRankLimit, "Maximum entities to show (0 for all)")
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(topCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank entities by degree",
	Long: `List entities by number of distinct co-occurring neighbors, highest first.
Ties are ordered lexicographically by entity.`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the entity with the highest degree",
	Long: `Show the most connected entity. Ties resolve to the lexicographically
smallest entity. Exits with a data error when the graph is empty.`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

// RankResult is the response for the rank command.
type RankResult struct {
	Total   int                   `json:"total"`
	Ranking []cooccur.DegreeEntry `json:"ranking"`
}

// TopResult is the response for the top command.
type TopResult struct {
	Entity string `json:"entity"`
	Degree int    `json:"degree"`
}

func runRank(cmd *cobra.Command, args []string) error {
	if rankLimit < 0 {
		exitWithError(ExitError, "invalid limit: %d", rankLimit)
	}

	g := mustLoadGraph()
	ranking := cooccur.DegreeRanking(g)
	result := RankResult{Total: len(ranking), Ranking: limitRanking(ranking, rankLimit)}

	if humanOutput {
		if len(result.Ranking) == 0 {
			fmt.Println("Graph is empty.")
			return nil
		}
		for i, e := range result.Ranking {
			fmt.Printf("%4d. %-*s %d\n", i+1, EntityMaxLen, truncateString(e.Entity, EntityMaxLen), e.Degree)
		}
		if result.Total > len(result.Ranking) {
			fmt.Printf("\n(showing %d of %d)\n", len(result.Ranking), result.Total)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

func runTop(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph()

	entity, err := cooccur.ArgmaxDegree(g)
	if err != nil {
		exitWithError(ExitDataError, "%v\n\nRun 'cog fetch' and 'cog rebuild' first.", err)
	}

	if humanOutput {
		fmt.Printf("%s (%s)\n", entity, pluralize(g.Degree(entity), "neighbor"))
	} else {
		outputJSON(TopResult{Entity: entity, Degree: g.Degree(entity)})
	}
	return nil
}

// limitRanking returns at most limit entries; 0 means no limit.
func limitRanking(ranking []cooccur.DegreeEntry, limit int) []cooccur.DegreeEntry {
	if limit == 0 || limit >= len(ranking) {
		return ranking
	}
	return ranking[:limit]
}

// mustLoadGraph loads the built graph from the repository database.
func mustLoadGraph() *cooccur.Graph {
	repoRoot := mustFindRepository()
	db := mustOpenBuiltDatabase(repoRoot)
	defer db.Close()

	g, err := db.LoadGraph()
	if err != nil {
		exitWithError(ExitError, "loading graph: %v", err)
	}
	return g
}
