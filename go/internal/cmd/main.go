package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/purplehaze/glorynews/go/internal/ladder"
	"github.com/purplehaze/glorynews/go/internal/news"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		config     *Config
	)

	root := &cobra.Command{
		Use:          "glorynews",
		Short:        "A-League ladder and news aggregation service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Debug().Err(err).Msg("could not load .env file")
			}

			var err error
			config, err = loadConfig(configPath)
			if err != nil {
				return err
			}
			setupLogging(config.Log.Level, config.Log.Pretty)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", getEnv("GLORYNEWS_CONFIG", "config.yaml"), "path to the YAML config file")

	root.AddCommand(
		newServeCommand(func() *Config { return config }),
		newFetchCommand(func() *Config { return config }),
	)
	return root
}

func newServeCommand(config func() *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live update hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config())
		},
	}
}

func serve(ctx context.Context, config *Config) error {
	services, err := setupServices(ctx, config)
	if err != nil {
		return err
	}
	defer services.Close()

	go services.Hub.Start(ctx)

	// only logging is applied live; everything else needs a restart
	if err := watchConfig(ctx, config.path, func(c *Config) {
		setupLogging(c.Log.Level, c.Log.Pretty)
	}); err != nil {
		log.Warn().Err(err).Msg("config hot reload disabled")
	}

	server := setupServer(config, services)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newFetchCommand(config func() *Config) *cobra.Command {
	var refresh bool

	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Run one pipeline pass and print the result as JSON",
	}
	fetch.PersistentFlags().BoolVar(&refresh, "refresh", false, "bypass and replace cached data")

	fetch.AddCommand(&cobra.Command{
		Use:   "standings",
		Short: "Fetch the ladder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := setupServices(cmd.Context(), config())
			if err != nil {
				return err
			}
			defer services.Close()

			table := services.Ladder.FetchStandings(cmd.Context(), ladder.FetchOptions{ForceRefresh: refresh})
			return printJSON(cmd, table)
		},
	})

	var (
		source string
		limit  int
	)
	newsCmd := &cobra.Command{
		Use:   "news",
		Short: "Fetch the article feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := setupServices(cmd.Context(), config())
			if err != nil {
				return err
			}
			defer services.Close()

			feed := services.News.FetchArticles(cmd.Context(), news.Query{SourceID: source, Limit: limit, ForceRefresh: refresh})
			return printJSON(cmd, feed)
		},
	}
	newsCmd.Flags().StringVar(&source, "source", "", "only this source key")
	newsCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of articles (0 uses the configured default)")
	fetch.AddCommand(newsCmd)

	return fetch
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
