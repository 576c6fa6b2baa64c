package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(neighborsCmd)
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <entity>",
	Short: "List the entities that co-occur with an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runNeighbors,
}

// NeighborsResult is the response for the neighbors command.
type NeighborsResult struct {
	Entity    string   `json:"entity"`
	Degree    int      `json:"degree"`
	Neighbors []string `json:"neighbors"`
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	entity := args[0]

	repoRoot := mustFindRepository()
	db := mustOpenBuiltDatabase(repoRoot)
	defer db.Close()

	ok, err := db.HasNode(entity)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !ok {
		exitWithError(ExitNotFound, "entity not in graph: %s", entity)
	}

	nbrs, err := db.Neighbors(entity)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if nbrs == nil {
		nbrs = []string{}
	}

	if humanOutput {
		fmt.Printf("%s (%s)\n", entity, pluralize(len(nbrs), "neighbor"))
		if len(nbrs) > 0 {
			fmt.Printf("  %s\n", formatList(nbrs))
		}
	} else {
		outputJSON(NeighborsResult{Entity: entity, Degree: len(nbrs), Neighbors: nbrs})
	}
	return nil
}
