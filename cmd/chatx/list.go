package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/tui"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all exports sorted by last activity",
		Long: `Opens a TUI panel showing all indexed exports sorted by their last message
(newest first). Type to search message text; from:NAME and since:YYYY-MM-DD
narrow the results. Tab opens the selected export and Shift+Tab goes back.
Ctrl+N toggles group notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, p, true)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Since: since,
				Limit: limit,
			}

			return tui.RunList(db, opts)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only exports active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
