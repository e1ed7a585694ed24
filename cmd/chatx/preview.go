package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/render"
)

func previewCmd() *cobra.Command {
	var hitIndex int
	var context int
	var width int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <exportKey>",
		Short: "Preview an export with context around a hit",
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

			out, _, err := render.RenderExport(db, args[0], render.Options{
				HitIndex: hitIndex,
				Context:  context,
				Width:    width,
				Query:    query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitIndex, "hit", -1, "Message index to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
