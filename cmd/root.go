// Package cmd defines and implements the CLI commands for the mcpserver
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/config"
	"github.com/sasif-infinite/mcp/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcpserver",
		Short: "MCP server with a bounded same-origin site crawler",
		Long: `mcpserver exposes MCP tools over stdio or HTTP, centered on a bounded
same-origin crawler that indexes a single website and answers questions from
snippets of the crawled content. The index survives restarts through a durable
JSON snapshot with a memory-only fallback.`,
	}

	cobra.OnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
		config.Init()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// newLogger builds the process logger from config.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Server.Development)
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
