package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/watch"
)

func watchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-index whenever export files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, p, false)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := indexOptions(cfg, p)
			reindex := func(context.Context) {
				stats, err := index.IndexAll(db, opts)
				if err != nil {
					log.Printf("[watch] index: %v", err)
					return
				}
				log.Printf("[watch] %s", stats)
			}

			w, err := watch.New(cfg.Roots, cfg.Include, debounce, reindex)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reindex(ctx)
			log.Printf("[watch] watching %d roots", len(w.Roots()))
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-indexing")

	return cmd
}
