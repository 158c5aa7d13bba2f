// Package cli wires the cobra root command implementing the
// `crawlsearch <config.ini> <mode>` contract.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ryzhov/crawlsearch/internal/config"
	"github.com/ryzhov/crawlsearch/internal/crawler"
	"github.com/ryzhov/crawlsearch/internal/fetcher"
	"github.com/ryzhov/crawlsearch/internal/linkextractor"
	"github.com/ryzhov/crawlsearch/internal/logging"
	"github.com/ryzhov/crawlsearch/internal/searchserver"
	"github.com/ryzhov/crawlsearch/internal/storage"
	"github.com/ryzhov/crawlsearch/internal/tokenizer"
	"github.com/ryzhov/crawlsearch/pkg/limiter"
)

const (
	modeCrawler = "crawler"
	modeServer  = "server"
)

// NewRootCmd builds the crawlsearch root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crawlsearch <config.ini> <crawler|server>",
		Short:         "concurrent crawler and search server backed by a relational inverted index",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0], args[1])
		},
	}
	return cmd
}

func run(configPath, mode string) error {
	if mode != modeCrawler && mode != modeServer {
		return fmt.Errorf("mode must be %q or %q, got %q", modeCrawler, modeServer, mode)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Console: cfg.LogConsole(), LogDir: logDirIfEnabled(cfg)})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()

	store, err := storage.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	switch mode {
	case modeCrawler:
		return runCrawler(ctx, cfg, store, logger)
	default:
		return runServer(ctx, cfg, store, logger)
	}
}

func logDirIfEnabled(cfg config.Config) string {
	if !cfg.LogFile() {
		return ""
	}
	return cfg.LogDir()
}

func runCrawler(ctx context.Context, cfg config.Config, store *storage.Store, logger *logging.Logger) error {
	var stopwords map[string]struct{}
	if cfg.FilterStopwords() {
		content, err := os.ReadFile("stopwords.txt")
		if err != nil {
			return fmt.Errorf("read stopwords.txt: %w", err)
		}
		stopwords = tokenizer.LoadStopwords(string(content))
	}

	var extractor linkextractor.LinkExtractor
	if cfg.LinkExtractor() == config.LinkExtractorDOM {
		extractor = linkextractor.NewDOMExtractor()
	} else {
		extractor = linkextractor.NewRegexExtractor()
	}

	var rl limiter.RateLimiter
	if cfg.BaseDelay() > 0 || cfg.Jitter() > 0 {
		rl = limiter.NewConcurrentRateLimiter(cfg.BaseDelay(), cfg.Jitter())
	}

	c := &crawler.Crawler{
		Fetcher:   fetcher.NewHTTPFetcher("crawlsearch/1.0", cfg.Timeout()),
		Extractor: extractor,
		Tokenizer: tokenizer.New(stopwords),
		Store:     store,
		Limiter:   rl,
		Logger:    logger,
		MaxDepth:  cfg.MaxDepth(),
		SeedURL:   cfg.StartURL(),
		Timeout:   cfg.Timeout(),
	}

	c.Run(ctx)
	logger.Info("crawl finished")
	return nil
}

func runServer(ctx context.Context, cfg config.Config, store *storage.Store, logger *logging.Logger) error {
	formHTML, err := os.ReadFile("html/search_form.html")
	if err != nil {
		return fmt.Errorf("read search_form.html: %w", err)
	}
	resultsHTML, err := os.ReadFile("html/search_results.html")
	if err != nil {
		return fmt.Errorf("read search_results.html: %w", err)
	}

	srv := searchserver.New(store, logger, string(formHTML), string(resultsHTML))
	addr := fmt.Sprintf(":%d", cfg.ServerPort())
	logger.Info("server listening", "addr", addr)
	return srv.ListenAndServe(ctx, addr)
}
