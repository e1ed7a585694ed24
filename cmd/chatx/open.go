package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/open"
)

func openCmd() *cobra.Command {
	var hitIndex int

	cmd := &cobra.Command{
		Use:   "open <exportKey>",
		Short: "Open the export file in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
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

			return open.OpenExport(db, args[0], hitIndex)
		},
	}

	cmd.Flags().IntVar(&hitIndex, "hit", -1, "Message index to jump to")

	return cmd
}
