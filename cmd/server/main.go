package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"finsight-go-api/internal/config"
	"finsight-go-api/internal/handlers"
	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/server"
	"finsight-go-api/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "finsight",
		Short: "FinSight - grounded stock insights",
		Long: `FinSight serves a single page that combines market data, recent web search
results and an AI-written analysis for a stock ticker.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configFile, cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().String("port", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newAnalyzeCmd(&configFile))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finsight %s\n", handlers.Version)
		},
	})

	return rootCmd
}

// newAnalyzeCmd runs the pipeline once and prints the insight markdown.
func newAnalyzeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Analyze one ticker and print the insight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configFile, cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), handlers.RequestTimeout)
			defer cancel()

			analyzer, err := buildAnalyzer(ctx, cfg, log)
			if err != nil {
				return err
			}

			report, err := analyzer.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n\n%s\n", report.Ticker, report.Insight.Markdown)
			if len(report.Sources) > 0 {
				fmt.Fprintln(out, "\n## Sources Consulted")
				for _, s := range report.Sources {
					fmt.Fprintf(out, "- %s (%s)\n", s.Title, s.URL)
				}
			}
			return nil
		},
	}
}

func setup(configFile string, cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.FilePath = cfg.LogFile
	log := logging.NewLogger(logCfg)

	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}
	return cfg, log, nil
}

func buildAnalyzer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*services.AnalysisOrchestrator, error) {
	insights, err := services.NewInsightService(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return services.NewAnalysisOrchestrator(
		services.NewMarketDataService(cfg, log),
		services.NewSearchService(ctx, cfg, log),
		insights,
		services.NewChartService(cfg.ChartStyle),
		log,
	), nil
}

func runServer(configFile string, cmd *cobra.Command) error {
	cfg, log, err := setup(configFile, cmd)
	if err != nil {
		return err
	}

	analyzer, err := buildAnalyzer(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	app := server.New(cfg, log, analyzer)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Str("model", cfg.Completion.Model).
		Str("chart_style", cfg.ChartStyle).
		Msg("FinSight started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Failed to start server")
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
