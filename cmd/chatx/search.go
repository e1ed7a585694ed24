package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd() *cobra.Command {
	var export, sender, since string
	var notifications bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5. On a terminal this opens the
interactive UI; otherwise output is TSV for fzf integration:
  exportKey, index, timestamp, title, sender, snippet

Recommended shell function (add to .zshrc):
  chatf() {
    chatx search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'chatx preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(chatx open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := loadConfig()
			if err != nil {
				return err
			}

			// Auto-update index before searching
			db, err := openIndex(cfg, p, true)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Export:               export,
				Sender:               sender,
				Since:                since,
				IncludeNotifications: notifications,
				Limit:                limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				ts := r.Ts
				if ts == "" {
					ts = "-"
				}
				// first two fields (exportKey, index) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s%s%s\t%s\n",
					r.ExportKey,
					r.Idx,
					sColorDim, ts, sColorReset,
					flatten(r.Title),
					render.SenderColor(r.Sender), flatten(r.Sender), sColorReset,
					colorizeSnippet(flatten(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Only search one export (export key)")
	cmd.Flags().StringVar(&sender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&since, "since", "", "Only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&notifications, "notifications", false, "Include group notifications")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
