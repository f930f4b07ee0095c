// Package cli implements the storylord CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/storylord/internal/agent"
	"github.com/vampirenirmal/storylord/internal/config"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/registry"
)

var (
	verbose bool
	mockAI  bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "storylord",
	Short: "Generate fiction from a story idea",
	Long:  "storylord turns a story idea and a character roster into a narrated, edited story: architecture first, then beat-by-beat narration with continuity revision, then a style pass.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&mockAI, "mock", false, "Use the mock AI client (no API calls)")
}

// buildRegistry returns the registry populated with the built-in agent
// variants. External variants would register here as well.
func buildRegistry() *registry.Registry {
	return registry.NewWithBuiltins()
}

func buildAgent(cfg *config.Config) (core.Agent, error) {
	if mockAI {
		return agent.NewMockClient(), nil
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("%w: set STORYLORD_API_KEY or ai.api_key, or pass --mock", core.ErrNoAPIKey)
	}
	return agent.NewClient(cfg.AI.APIKey,
		agent.WithAPIConfig(cfg.AI.BaseURL, cfg.AI.Model),
		agent.WithTimeout(timeoutSeconds(cfg.AI.Timeout)),
		agent.WithRetry(cfg.Limits.MaxRetries),
		agent.WithMaxTokens(cfg.Limits.MaxTokens),
		agent.WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
	), nil
}

func timeoutSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
