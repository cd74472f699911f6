package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nrouizem/ctic-news-feed/internal/ai"
	"github.com/nrouizem/ctic-news-feed/internal/config"
	"github.com/nrouizem/ctic-news-feed/internal/curate"
	"github.com/nrouizem/ctic-news-feed/internal/feed"
	"github.com/nrouizem/ctic-news-feed/internal/keywords"
	"github.com/nrouizem/ctic-news-feed/internal/store"
	"github.com/nrouizem/ctic-news-feed/internal/summarize"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Ingest configured feeds into the article store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fetchPhase(ctx, cfg, db, aiClient(cfg))
		return nil
	},
}

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Publish per-area RSS files from stored articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return curatePhase(ctx, cfg, db, aiClient(cfg))
	},
}

// runAll is the scheduled batch entry point: ingest, optionally prune,
// then republish.
func runAll(cmd *cobra.Command, args []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := aiClient(cfg)
	fetchPhase(ctx, cfg, db, client)

	if retention := cfg.RetentionDuration(); retention > 0 {
		if deleted, err := db.Prune(retention); err != nil {
			log.Printf("[warn] pruning: %v", err)
		} else if deleted > 0 {
			log.Printf("pruned %d article(s) past retention", deleted)
		}
	}

	return curatePhase(ctx, cfg, db, client)
}

func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening article store: %w", err)
	}
	return cfg, db, nil
}

// aiClient returns nil when AI is not configured; the pipeline then
// degrades to excerpt summaries and cached keywords only.
func aiClient(cfg *config.Config) ai.Client {
	if !cfg.AIEnabled() {
		log.Printf("[warn] AI not configured; using excerpt summaries and cached keywords")
		return nil
	}
	client, err := ai.New(cfg.AI, cfg.AIKey())
	if err != nil {
		log.Printf("[warn] AI unavailable: %v", err)
		return nil
	}
	return client
}

func fetchPhase(ctx context.Context, cfg *config.Config, db *store.Store, client ai.Client) {
	var summarizer feed.Summarizer
	if client != nil {
		summarizer = summarize.New(client, summarize.Options{Interval: cfg.ThrottleDuration()})
	}

	fetcher := feed.NewFetcher(db, summarizer)
	log.Printf("fetching %d feed(s) with %d worker(s)", len(cfg.Feeds), cfg.Workers())
	for _, err := range fetcher.FetchAll(ctx, cfg.Feeds, cfg.Workers()) {
		log.Printf("[warn] %v", err)
	}
}

func curatePhase(ctx context.Context, cfg *config.Config, db *store.Store, client ai.Client) error {
	gen := keywords.NewGenerator(client, keywords.NewCache(cfg.KeywordCachePath()), keywords.Options{})
	return curate.New(db, gen, cfg).Run(ctx)
}
