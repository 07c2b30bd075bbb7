package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devfolio/portfolio/catalog"
	"github.com/devfolio/portfolio/internal/app"
	"github.com/devfolio/portfolio/internal/config"
	"github.com/devfolio/portfolio/internal/content"
	"github.com/devfolio/portfolio/internal/enrich"
	"github.com/devfolio/portfolio/internal/inbox"
)

const version = "v0.1.0"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio site tooling: catalog lookups, asset checks and the contact inbox.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringP("loglevel", "l", "warn", "Set log level. Available: debug, info, warn, error")

	root.AddCommand(newLookupCmd(), newCheckAssetsCmd(), newInboxCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "portfolio", version)
		},
	}
}

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <catalog-id>",
		Short: "Resolve an App Store id through the cache and transport chain",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookup,
	}
	cmd.Flags().StringP("country", "c", "", "Storefront country code (default from CATALOG_COUNTRY)")
	cmd.Flags().StringSlice("strategies", nil, "Transport order override, e.g. direct,relay")
	cmd.Flags().String("title", "", "Fallback title when the lookup fails")
	cmd.Flags().Bool("no-cache", false, "Skip the local cache")
	return cmd
}

type noCache struct{}

func (noCache) Get(string) (catalog.Record, bool) { return catalog.Record{}, false }
func (noCache) Put(string, catalog.Record) error { return nil }

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if order, _ := cmd.Flags().GetStringSlice("strategies"); len(order) > 0 {
		cfg.Catalog.StrategyOrder = order
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	country, _ := cmd.Flags().GetString("country")
	if country == "" {
		country = cfg.Catalog.Country
	}
	req, err := catalog.NewRequest(args[0], country)
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}

	level, _ := cmd.Flags().GetString("loglevel")
	logger := app.NewLogger(level).Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	resolver, err := app.Resolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	var store enrich.Store = noCache{}
	if skip, _ := cmd.Flags().GetBool("no-cache"); !skip {
		s, closeStore, err := app.Store(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()
		store = s
	}

	title, _ := cmd.Flags().GetString("title")
	res := app.Loader(cfg, store, resolver, nil, logger).Load(context.Background(), req, title)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"state":   res.State,
		"source":  res.Source,
		"country": res.Country,
		"record":  res.Record,
	})
}

func newInboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List the most recent contact form submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := inbox.NewPG(pool).Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("list messages: %w", err)
			}
			return printInbox(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of messages to show")
	return cmd
}

func printInbox(out io.Writer, entries []inbox.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No messages.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tSTATUS\tFROM\tMESSAGE")
	for _, e := range entries {
		msg := strings.Join(strings.Fields(e.Message), " ")
		if r := []rune(msg); len(r) > 60 {
			msg = string(r[:57]) + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s <%s>\t%s\n", e.CreatedAt.Format(time.DateTime), e.Status, e.Name, e.Email, msg)
	}
	return tw.Flush()
}

func newCheckAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-assets [dir]",
		Short: "Validate that every required static asset is present",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			rep, err := content.CheckAssets(os.DirFS(dir))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range rep.Assets {
				switch {
				case a.Present:
					fmt.Fprintf(out, "✓ %s (%.2f KB)\n", a.Path, float64(a.Size)/1024)
				case a.Required:
					fmt.Fprintf(out, "✗ %s - MISSING (required)\n", a.Path)
				default:
					fmt.Fprintf(out, "⚠ %s - missing (optional)\n", a.Path)
				}
			}
			if missing := rep.MissingRequired(); len(missing) > 0 {
				return fmt.Errorf("%d required assets missing: %s", len(missing), strings.Join(missing, ", "))
			}
			fmt.Fprintln(out, "All required files are present.")
			return nil
		},
	}
}
