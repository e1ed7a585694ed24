package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan the export roots and index every chat export",
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

			fmt.Fprintf(os.Stderr, "Scanning roots (%s, %s)...\n", p.Order, cfg.Timezone)
			for _, root := range cfg.Roots {
				fmt.Fprintf(os.Stderr, "  %s\n", root)
			}

			stats, err := index.IndexAll(db, indexOptions(cfg, p))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
