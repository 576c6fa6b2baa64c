package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/cooccur"
)

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the graph's nodes and edges as JSON",
	Long: `Export the built graph as JSON node and edge lists for plotting tools.

Examples:
  cog export > graph.json
  cog export --output graph.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show node and edge counts of the built graph",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// GraphExport is the serialized form of a graph.
type GraphExport struct {
	Nodes []ExportNode   `json:"nodes"`
	Edges []cooccur.Pair `json:"edges"`
}

// ExportNode is one node with its degree.
type ExportNode struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// newGraphExport converts a graph to its export form.
func newGraphExport(g *cooccur.Graph) GraphExport {
	nodes := g.Nodes()
	out := GraphExport{
		Nodes: make([]ExportNode, len(nodes)),
		Edges: g.Edges(),
	}
	for i, n := range nodes {
		out.Nodes[i] = ExportNode{ID: n, Degree: g.Degree(n)}
	}
	return out
}

func runExport(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph()
	data := newGraphExport(g)

	if exportOutput == "" {
		return outputJSON(data)
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	if err := os.WriteFile(exportOutput, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		fmt.Printf("Graph written to %s\n", exportOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenBuiltDatabase(repoRoot)
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Kind:     %s\n", stats.Kind)
		fmt.Printf("Nodes:    %d\n", stats.Nodes)
		fmt.Printf("Edges:    %d\n", stats.Edges)
		fmt.Printf("Isolated: %d\n", stats.Isolated)
	} else {
		outputJSON(stats)
	}
	return nil
}
