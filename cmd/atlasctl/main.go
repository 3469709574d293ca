// atlasctl runs the location and forecast pipelines from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"news-atlas/internal/app"
	"news-atlas/internal/config"
	"news-atlas/internal/ingest"
	"news-atlas/internal/models"
	"news-atlas/internal/services/news"
)

var version = "dev"

var (
	cfg         *config.Config
	application *app.App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "atlasctl",
	Short:         "Locate news articles and forecast their market impact",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Log.Level = level
		}
		app.SetupLogging(cfg.Log)

		application, err = app.Build(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(ingestCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atlasctl %s\n", version)
	},
}

// --- Locate Command ---

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve an article to a specific landmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		article, err := articleFromFlags(cmd)
		if err != nil {
			return err
		}
		return printJSON(application.Pipeline.ResolveLocation(cmd.Context(), article))
	},
}

func init() {
	addArticleFlags(locateCmd)
}

// --- Forecast Command ---

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast weekly prices for symbols given an article",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("symbols")
		symbols := splitList(raw)
		if len(symbols) == 0 {
			return fmt.Errorf("--symbols is required")
		}
		article, err := articleFromFlags(cmd)
		if err != nil {
			return err
		}

		report, err := application.Reconciler.Forecast(cmd.Context(), symbols, article)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	forecastCmd.Flags().String("symbols", "", "comma-separated ticker symbols, e.g. AAPL,MSFT")
	addArticleFlags(forecastCmd)
}

// --- Portfolio Command ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [tickers...]",
	Short: "Forecast each ticker against its latest company news",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := application.Portfolio.Predict(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load articles from JSON files, feeds or samples and locate them into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		feeds, _ := cmd.Flags().GetStringSlice("feed")
		sample, _ := cmd.Flags().GetBool("sample")

		var sources []ingest.Source
		if dir != "" {
			sources = append(sources, ingest.NewLoader(dir))
		}
		if len(feeds) > 0 {
			sources = append(sources, ingest.NewFeedSource(feeds, cfg.Refresh.MaxItems))
		}
		if sample {
			sources = append(sources, ingest.SampleSource{})
		}
		if len(sources) == 0 {
			return fmt.Errorf("one of --dir, --feed or --sample is required")
		}

		svc := news.NewNewsService(application.Repository, application.Pipeline, sources, news.WithPublisher(application.Publisher))
		result, err := svc.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	ingestCmd.Flags().String("dir", "", "directory of JSON article files")
	ingestCmd.Flags().StringSlice("feed", nil, "RSS/Atom feed URL (repeatable)")
	ingestCmd.Flags().Bool("sample", false, "ingest the built-in sample articles")
}

func addArticleFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "article title")
	cmd.Flags().String("summary", "", "article summary")
	cmd.Flags().String("content", "", "article body")
	cmd.Flags().String("source", "", "publisher name")
	cmd.Flags().String("file", "", "read the article from a JSON file instead")
}

func articleFromFlags(cmd *cobra.Command) (models.Article, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		articles, err := ingest.NewLoader("").LoadFromFile(path)
		if err != nil {
			return models.Article{}, err
		}
		if len(articles) == 0 {
			return models.Article{}, fmt.Errorf("no article with a title in %s", path)
		}
		return articles[0], nil
	}

	var a models.Article
	a.Title, _ = cmd.Flags().GetString("title")
	a.Summary, _ = cmd.Flags().GetString("summary")
	a.Content, _ = cmd.Flags().GetString("content")
	a.Source, _ = cmd.Flags().GetString("source")
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Content) == "" {
		return a, fmt.Errorf("--title or --content is required")
	}
	a.PublishedAt = time.Now().UTC()
	a.EnsureID()
	return a, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
