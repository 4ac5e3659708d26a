package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/pagecontext-mcp/internal/mcp"
	"github.com/dshills/pagecontext-mcp/internal/storage"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// withApp loads config, wires the services and runs fn with a context that
// is cancelled on SIGINT or SIGTERM
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("metrics-addr") {
					a.cfg.Metrics.Addr = metricsAddr
				}
				if addr := a.cfg.Metrics.Addr; addr != "" {
					go func() {
						a.logger.Info("metrics endpoint listening", "addr", addr)
						if err := a.metrics.Serve(ctx, addr); err != nil {
							a.logger.Error("metrics endpoint stopped", "error", err)
						}
					}()
				}

				a.logger.Info("pagecontext starting",
					"version", version,
					"build_mode", storage.BuildMode,
					"store", a.store.Backend())

				srv := mcp.NewServer(a.indexer, a.searcher, mcp.Options{
					Version:     version,
					DefaultTopK: a.cfg.Search.TopK,
					Logger:      a.logger,
				})
				err := srv.Serve(ctx)
				if ctx.Err() != nil {
					a.logger.Info("server stopped")
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func newIndexCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "index <url>...",
		Short: "Fetch and index one or more web pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				report := a.indexer.IndexURLs(ctx, args)
				out := cmd.OutOrStdout()
				if asJSON {
					if err := writeJSON(out, report); err != nil {
						return err
					}
				} else {
					renderReport(out, report)
				}
				if report.Failed > 0 {
					return fmt.Errorf("%d of %d sources failed", report.Failed, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var (
		topK   int
		source string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				k := topK
				if !cmd.Flags().Changed("top-k") {
					k = a.cfg.Search.TopK
				}

				var (
					found []types.SearchResult
					err   error
				)
				if source != "" {
					found, err = a.searcher.SearchSource(ctx, source, query, k)
				} else {
					found, err = a.searcher.Search(ctx, query, k)
				}
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd.OutOrStdout(), found)
				}
				renderResults(cmd.OutOrStdout(), query, found)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Maximum number of results (1-100)")
	cmd.Flags().StringVar(&source, "source", "", "Only return results from this source URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.indexer.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("index cleared"))
				return nil
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index size and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				st, err := a.indexer.Status(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), st)
				}
				renderStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("pagecontext "+version))
			fmt.Fprintf(out, "Build Time:       %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode:       %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver:    %s\n", storage.DriverName)
			fmt.Fprintf(out, "Vector Extension: %v\n", storage.VectorExtensionAvailable)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
