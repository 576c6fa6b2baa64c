package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/cograph/internal/config"
	"github.com/matsen/cograph/internal/record"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  cog config                           # Show all config
  cog config mailto                    # Get specific value
  cog config mailto me@example.org     # Set value
  cog config default-kind citation

Keys:
  mailto        Contact email for the OpenAlex polite pool
  base-url      OpenAlex API base URL (empty for the public API)
  timeout       Per-request timeout in seconds
  per-page      Page size for 'cog fetch filter' (1-200)
  concurrency   Parallel work lookups for 'cog fetch work'
  default-kind  Record kind used when --kind is not given (authorship, citation)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configKeys lists the keys in display order.
var configKeys = []string{"mailto", "base-url", "timeout", "per-page", "concurrency", "default-kind"}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			for _, k := range configKeys {
				v, _ := getConfigValue(cfg, k)
				fmt.Printf("%-13s %s\n", k+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		v, err := getConfigValue(cfg, key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): v})
		}
		return nil
	}

	value := args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "mailto":
		return cfg.Mailto, nil
	case "base-url":
		return cfg.BaseURL, nil
	case "timeout":
		return strconv.Itoa(cfg.TimeoutSeconds), nil
	case "per-page":
		return strconv.Itoa(cfg.PerPage), nil
	case "concurrency":
		return strconv.Itoa(cfg.Concurrency), nil
	case "default-kind":
		return cfg.DefaultKind, nil
	}
	return "", fmt.Errorf("unknown configuration key: %s", key)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "mailto":
		if err := config.ValidateMailto(value); err != nil {
			return err
		}
		cfg.Mailto = value
	case "base-url":
		cfg.BaseURL = strings.TrimRight(value, "/")
	case "timeout", "per-page", "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %q is not an integer", key, value)
		}
		switch key {
		case "timeout":
			if err := config.ValidatePositive("timeout", n); err != nil {
				return err
			}
			cfg.TimeoutSeconds = n
		case "per-page":
			if err := config.ValidatePerPage(n); err != nil {
				return err
			}
			cfg.PerPage = n
		default:
			if err := config.ValidatePositive("concurrency", n); err != nil {
				return err
			}
			cfg.Concurrency = n
		}
	case "default-kind":
		kind, err := record.ParseKind(value)
		if err != nil {
			return err
		}
		cfg.DefaultKind = string(kind)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (per_page, Per-Page) to per-page.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
