// Package main provides the cog CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/config"
	"github.com/matsen/cograph/internal/logging"
	"github.com/matsen/cograph/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// debugLogging enables debug-level logs on stderr
var debugLogging bool

// logger is configured in the root command's PersistentPreRun.
var logger = logging.Discard()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cog",
	Short: "Co-occurrence graphs from scholarly metadata",
	Long: `cog builds co-occurrence graphs from OpenAlex work metadata.

Two entities are connected when they appear together in at least one work:
  - authorship: authors who wrote a work together
  - citation:   works referenced by the same work

Fetched records are stored in git-versionable JSONL; the built graph lives in
an ephemeral SQLite database that 'cog rebuild' regenerates.
All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.Options{Debug: debugLogging})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging on stderr")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a repository.
func getStartingDirectory() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// mustFindRepository finds the repository from the working directory, falling
// back to the global graph_path. Exits on error.
func mustFindRepository() string {
	repoRoot, err := config.FindRepository(getStartingDirectory())
	if err == nil {
		return repoRoot
	}

	if fallback := config.GetGraphPath(); fallback != "" && config.IsRepository(fallback) {
		logger.Debug("using global graph_path", "path", fallback)
		return fallback
	}

	fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
	os.Exit(ExitConfigError)
	return ""
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, creating it if needed.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustOpenBuiltDatabase opens the graph database for queries and exits if
// 'cog rebuild' has not been run yet.
func mustOpenBuiltDatabase(repoRoot string) *storage.DB {
	if _, err := os.Stat(config.DBPath(repoRoot)); err != nil {
		exitWithError(ExitConfigError, "graph database not found\n\nRun 'cog rebuild' to build it.")
	}
	return mustOpenDatabase(repoRoot)
}
