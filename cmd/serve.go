package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/config"
	"github.com/sasif-infinite/mcp/internal/crawler"
	"github.com/sasif-infinite/mcp/internal/index"
	"github.com/sasif-infinite/mcp/internal/metrics"
	"github.com/sasif-infinite/mcp/internal/orchestrator"
	"github.com/sasif-infinite/mcp/internal/server"
	"github.com/sasif-infinite/mcp/internal/tools"
)

// newServeCmd creates the 'serve' subcommand. The positional argument picks
// the transport (stdio by default, matching the historical behaviour).
func newServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:       "serve [stdio|http]",
		Short:     "Start the MCP server",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"stdio", "http"},
		RunE: func(cmd *cobra.Command, args []string) error {
			transport := "stdio"
			if len(args) > 0 {
				transport = args[0]
			}
			if cmd.Flags().Changed("host") {
				viper.Set("server.host", host)
			}
			if cmd.Flags().Changed("port") {
				viper.Set("server.port", port)
			}

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return runServe(cmd, cfg, transport, logger)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind host for the http transport")
	cmd.Flags().IntVar(&port, "port", 0, "bind port for the http transport")

	return cmd
}

func runServe(cmd *cobra.Command, cfg config.Config, transport string, logger *zap.Logger) error {
	metrics.Init()

	crawlCfg := crawler.Config{
		Origin:         cfg.Crawler.Origin,
		UserAgent:      cfg.Crawler.UserAgent,
		MaxPages:       cfg.Crawler.MaxPages,
		MaxDepth:       cfg.Crawler.MaxDepth,
		RequestTimeout: cfg.Crawler.RequestTimeout,
	}

	fetcher, err := crawler.NewCollyFetcher(crawlCfg.Clamped(), logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	frontier := crawler.NewFrontier(fetcher, logger)

	store := index.NewStore(cfg.Crawler.IndexPath, logger)
	if _, ok := store.Load(); !ok {
		logger.Info("no usable index snapshot; starting with empty index",
			zap.String("path", cfg.Crawler.IndexPath))
	}

	orch := orchestrator.New(frontier, store, crawlCfg, logger)

	srv := server.NewMCPServer()
	tools.RegisterCrawlTools(srv, orch)
	tools.RegisterDemoTools(srv, tools.DemoConfig{Secret: cfg.Secret})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "stdio":
		return server.RunStdio(ctx, srv, logger)
	case "http":
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return server.RunHTTP(ctx, srv, addr, logger)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
	}
}
