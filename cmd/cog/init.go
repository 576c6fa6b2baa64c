package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new cograph repository",
	Long: `Initialize a new cograph repository in the current directory.

Creates:
  .cograph/
  ├── records.jsonl   # Empty file
  ├── config.json     # Default config
  └── cache/          # Graph database (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := getStartingDirectory()

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a cograph repository")
	}

	if err := initRepository(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized cograph repository in %s\n", config.RepoPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.RepoPath(root)})
	}
	return nil
}

// initRepository creates the repository layout under root.
func initRepository(root string) error {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating .cograph directory: %w", err)
	}

	f, err := os.Create(config.RecordsPath(root))
	if err != nil {
		return fmt.Errorf("creating records.jsonl: %w", err)
	}
	f.Close()

	if err := config.Default().Save(root); err != nil {
		return err
	}

	gitignore := "cache/\n"
	if err := os.WriteFile(filepath.Join(config.RepoPath(root), ".gitignore"), []byte(gitignore), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
