package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"storefront/config"
	"storefront/internal/cms"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print per-item totals for a day",
		RunE:  runReport,
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Print every line item sold on a day, newest first",
		RunE:  runHistory,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write a day's sales as sales_<date>.csv",
		RunE:  runExport,
	}

	syncCatalogCmd = &cobra.Command{
		Use:   "sync-catalog",
		Short: "Copy the CMS catalog into the Postgres ledger",
		RunE:  runSyncCatalog,
	}
)

// contentStore opens the backend selected by CONTENT_BACKEND. The returned
// func releases it.
func contentStore(cfg *config.Config) (service.ContentStore, func(), error) {
	if cfg.Content.Backend == config.BackendPostgres {
		st, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}
	return newCMSClient(cfg), func() {}, nil
}

func newCMSClient(cfg *config.Config) *cms.Client {
	return cms.NewClient(cms.Config{
		BaseURL:   cfg.Content.BaseURL,
		APIKey:    cfg.Content.APIKey,
		ListLimit: cfg.Content.ListLimit,
		Timeout:   time.Duration(cfg.Content.TimeoutSecs) * time.Second,
	})
}

func dashboardService() (*service.DashboardService, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	content, closeFn, err := contentStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewDashboardService(content, cfg.Report.UTCOffsetHours), closeFn, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := dashboardService()
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := svc.Load(cmd.Context(), day)
	if err != nil {
		return err
	}
	if d.Degraded {
		return fmt.Errorf("could not load sales for %s", d.Day)
	}
	return printReport(cmd.OutOrStdout(), d)
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := dashboardService()
	if err != nil {
		return err
	}
	defer closeFn()

	if day == "" {
		day = svc.Today()
	}
	h, err := svc.History(cmd.Context(), day)
	if err != nil {
		return err
	}
	if h.Degraded {
		return fmt.Errorf("could not load sales for %s", h.Day)
	}
	return printHistory(cmd.OutOrStdout(), h.Rows)
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := dashboardService()
	if err != nil {
		return err
	}
	defer closeFn()

	if day == "" {
		day = svc.Today()
	}
	saver := newDiskSaver(afero.NewOsFs(), outDir)
	filename, err := svc.Export(cmd.Context(), day, saver)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), saver.Path(filename))
	return nil
}

func runSyncCatalog(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	st, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	n, err := syncCatalog(ctx, newCMSClient(cfg), st)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "synced %d items\n", n)
	return nil
}

type catalogSource interface {
	ListItems(ctx context.Context) ([]models.Item, error)
}

type catalogSink interface {
	UpsertItem(ctx context.Context, item models.Item) error
}

func syncCatalog(ctx context.Context, src catalogSource, dst catalogSink) (int, error) {
	items, err := src.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog: %w", err)
	}
	for _, item := range items {
		if err := dst.UpsertItem(ctx, item); err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", item.ID, err)
		}
	}
	util.GetLogger().Info("Catalog synced", zap.Int("items", len(items)))
	return len(items), nil
}

func yen(v int64) string {
	return humanize.Comma(v) + "円"
}

func printReport(w io.Writer, d *service.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t\t\t\n", d.Day)
	fmt.Fprintln(tw, "item\tprice\tcount\ttotal\t")
	for _, row := range d.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", row.Title, yen(row.Price), row.TotalCount, yen(row.TotalPrice))
	}
	fmt.Fprintf(tw, "total\t\t\t%s\t\n", yen(d.Chart.Total))
	fmt.Fprintf(tw, "previous day\t\t\t%s\t\n", yen(d.PreviousTotal))
	return tw.Flush()
}

func printHistory(w io.Writer, rows []models.FlatSaleRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "createdAt\titem\tprice\tcount\ttotal")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.CreatedAt, r.Title, yen(r.Price), r.Count, yen(r.Total))
	}
	return tw.Flush()
}
