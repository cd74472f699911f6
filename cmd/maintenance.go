package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nrouizem/ctic-news-feed/internal/config"
	"github.com/nrouizem/ctic-news-feed/internal/keywords"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the store",
	Long: `Delete stored articles older than the retention period and reclaim disk space.

Uses the retention value from config unless overridden with --older-than.
Articles are kept forever when neither is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}
		if retention <= 0 {
			return fmt.Errorf("no retention configured; pass --older-than (e.g. 180d)")
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show article store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		count, size, err := db.Stats(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Store: %s\n", cfg.DatabasePath())
		fmt.Printf("Articles: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		return nil
	},
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show cached topic-area keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		all, err := keywords.NewCache(cfg.KeywordCachePath()).All()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("Keyword cache is empty.")
			return nil
		}

		areas := make([]string, 0, len(all))
		for area := range all {
			areas = append(areas, area)
		}
		sort.Strings(areas)
		for _, area := range areas {
			fmt.Printf("%s: %s\n", area, strings.Join(all[area], ", "))
		}
		return nil
	},
}

var keywordsClearCmd = &cobra.Command{
	Use:   "clear [area]",
	Short: "Evict cached keywords so they regenerate on the next run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		cache := keywords.NewCache(cfg.KeywordCachePath())
		if len(args) == 1 {
			if err := cache.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared keywords for %s.\n", args[0])
			return nil
		}
		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Println("Cleared all cached keywords.")
		return nil
	},
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List stored articles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.ListAll()
		if err != nil {
			return err
		}
		for _, a := range articles {
			fmt.Printf("%s  %s\n    %s\n", a.PublishedRaw, a.Title, a.Link)
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 180d, 720h)")
	keywordsCmd.AddCommand(keywordsClearCmd)
	rootCmd.AddCommand(articlesCmd)
}

// parseDays parses durations with an "Nd" day suffix on top of the
// standard time.ParseDuration forms.
func parseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
