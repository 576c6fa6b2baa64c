package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/config"
	"github.com/matsen/cograph/internal/cooccur"
	"github.com/matsen/cograph/internal/record"
	"github.com/matsen/cograph/internal/storage"
)

// kindAll selects records of every kind.
const kindAll = "all"

var rebuildKind string

func init() {
	rebuildCmd.Flags().StringVar(&rebuildKind, "kind", "", "Record kind to build from: authorship, citation, or all (default from config)")
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the graph database from records",
	Long: `Build the co-occurrence graph from records.jsonl and store it in the
SQLite graph database, replacing any previous graph.

Use this after fetching, after pulling records from git, or if the database
becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	kind := rebuildKind
	if kind == "" {
		kind = cfg.DefaultKind
	}
	var filter record.Kind
	if kind != kindAll {
		filter = mustResolveKind(kind, cfg)
	}

	records, err := storage.ReadAllRecords(config.RecordsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}

	g, used := buildGraph(records, filter)
	logger.Debug("built graph", "records", used, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	if err := db.SaveGraph(g, kind); err != nil {
		exitWithError(ExitError, "saving graph: %v", err)
	}

	result := RebuildResult{
		Status:  "rebuilt",
		Kind:    kind,
		Records: used,
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	}
	if humanOutput {
		fmt.Printf("Rebuilt %s graph from %s: %s, %s\n",
			kind, pluralize(result.Records, "record"), pluralize(result.Nodes, "node"), pluralize(result.Edges, "edge"))
	} else {
		outputJSON(result)
	}
	return nil
}

// buildGraph builds the graph from records of the given kind (empty for all)
// and returns it with the number of records used.
func buildGraph(records []record.Record, kind record.Kind) (*cooccur.Graph, int) {
	obs := record.Observations(records, kind)
	return cooccur.Build(obs), len(obs)
}
