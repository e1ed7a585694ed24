package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/parse"
)

var version = "dev"

// dateOrder overrides the configured date_order when set.
var dateOrder string

func main() {
	rootCmd := &cobra.Command{
		Use:     "chatx",
		Short:   "chatx - parse, index, search and analyze exported chat transcripts",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&dateOrder, "date-order", "", "Numeric date order: day-first or month-first (overrides config)")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and builds the parser, honoring
// --date-order.
func loadConfig() (*config.Config, parse.Parser, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, parse.Parser{}, fmt.Errorf("load config: %w", err)
	}
	if dateOrder != "" {
		cfg.DateOrder = dateOrder
	}
	p, err := cfg.Parser()
	if err != nil {
		return nil, parse.Parser{}, err
	}
	return cfg, p, nil
}

func indexOptions(cfg *config.Config, p parse.Parser) index.Options {
	return index.Options{Roots: cfg.Roots, Include: cfg.Include, Parser: p}
}

// openIndex opens the database and, when refresh is set, brings it up to
// date first. Refresh failures are reported but do not stop the command.
func openIndex(cfg *config.Config, p parse.Parser, refresh bool) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if refresh {
		if _, err := index.IndexAll(db, indexOptions(cfg, p)); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: index refresh: %v\n", err)
		}
	}
	return db, nil
}
