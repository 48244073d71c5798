package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/models"
	"storefront/internal/report"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardService loads the daily sales views
type DashboardService struct {
	content     ContentStore
	offsetHours int
	now         func() time.Time
	logger      *zap.Logger
}

// NewDashboardService creates a dashboard service reporting business days
// that start at midnight in UTC+offsetHours.
func NewDashboardService(content ContentStore, offsetHours int) *DashboardService {
	return &DashboardService{
		content:     content,
		offsetHours: offsetHours,
		now:         time.Now,
		logger:      util.GetLogger(),
	}
}

// Dashboard is the payload of the daily sales page
type Dashboard struct {
	Day        string                       `json:"day"`
	Range      report.TimeRange             `json:"range"`
	Navigation report.Navigation            `json:"navigation"`
	Items      []models.Item                `json:"items"`
	Reports    map[string][]models.ItemStat `json:"reports"`
	// Rows is the current day's report, highest revenue first
	Rows          []models.ItemStat  `json:"rows"`
	Chart         report.DonutSeries `json:"chart"`
	PreviousTotal int64              `json:"previous_total"`
	Degraded      bool               `json:"degraded"`
}

// History is the flat line-item list of one day
type History struct {
	Day      string                  `json:"day"`
	Rows     []models.FlatSaleRecord `json:"rows"`
	Degraded bool                    `json:"degraded"`
}

// Today returns the current business day
func (s *DashboardService) Today() string {
	return report.Today(s.now(), s.offsetHours)
}

// Load builds the dashboard of day, or of today when day is empty.
// Upstream failures do not fail the call: the reports come back zero-valued
// and Degraded is set. Only a malformed day is returned as an error.
func (s *DashboardService) Load(ctx context.Context, day string) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Load")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ReportBuildLatency.Observe(time.Since(start).Seconds())
	}()

	if day == "" {
		day = s.Today()
	}
	span.SetAttributes(attribute.String("day", day))

	current, err := report.TimeRangeForDay(day, s.offsetHours)
	if err != nil {
		return nil, err
	}
	previous := current.ShiftDays(-1)
	nav, err := report.NavigationFor(day, s.now(), s.offsetHours)
	if err != nil {
		return nil, err
	}

	var (
		catalog                    []models.Item
		currentSales, prevSales    []models.SaleTransaction
		itemsErr, currErr, prevErr error
	)

	// Each fetch keeps its own error so a failed sales query does not
	// cancel the catalog.
	var g errgroup.Group
	g.Go(func() error {
		catalog, itemsErr = s.content.ListItems(ctx)
		return nil
	})
	g.Go(func() error {
		currentSales, currErr = s.content.ListSales(ctx, current)
		return nil
	})
	g.Go(func() error {
		prevSales, prevErr = s.content.ListSales(ctx, previous)
		return nil
	})
	_ = g.Wait()
	salesErr := currErr
	if salesErr == nil {
		salesErr = prevErr
	}

	degraded := false
	if itemsErr != nil {
		s.fetchFailed(span, "dashboard", day, upstream(ResourceItems, itemsErr))
		degraded = true
		catalog = []models.Item{}
	}
	if salesErr != nil {
		s.fetchFailed(span, "dashboard", day, upstream(ResourceSales, salesErr))
		degraded = true
		currentSales, prevSales = nil, nil
	}
	if catalog == nil {
		catalog = []models.Item{}
	}

	reports := report.BuildReports(catalog, map[string][]models.SaleTransaction{
		report.SetCurrent:  currentSales,
		report.SetPrevious: prevSales,
	})
	rows := report.SortByRevenueDesc(reports[report.SetCurrent])

	return &Dashboard{
		Day:           day,
		Range:         current,
		Navigation:    nav,
		Items:         catalog,
		Reports:       reports,
		Rows:          rows,
		Chart:         report.NewDonutSeries(rows),
		PreviousTotal: report.GrandTotal(reports[report.SetPrevious]),
		Degraded:      degraded,
	}, nil
}

// History lists the line items sold on day, newest first. Like Load, it
// degrades to an empty list when the content store fails.
func (s *DashboardService) History(ctx context.Context, day string) (*History, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.History", attribute.String("day", day))
	defer span.End()

	rows, err := s.flatRows(ctx, day)
	var fetchErr *UpstreamFetchError
	if errors.As(err, &fetchErr) {
		s.fetchFailed(span, "history", day, err)
		return &History{Day: day, Rows: []models.FlatSaleRecord{}, Degraded: true}, nil
	}
	if err != nil {
		return nil, err
	}

	return &History{Day: day, Rows: rows}, nil
}

// Export writes the day's history as CSV through saver and returns the
// file name. A day without sales yields report.ErrEmptyInput.
func (s *DashboardService) Export(ctx context.Context, day string, saver report.FileSaver) (string, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Export", attribute.String("day", day))
	defer span.End()

	rows, err := s.flatRows(ctx, day)
	if err != nil {
		util.RecordError(span, err)
		return "", err
	}

	filename := report.SalesFilename(day)
	if err := report.Download(saver, report.FlatRecords(rows), filename); err != nil {
		return "", err
	}

	util.CSVExportsTotal.Inc()
	s.logger.Info("Sales exported",
		zap.String("day", day),
		zap.Int("rows", len(rows)),
		zap.String("filename", filename))
	return filename, nil
}

func (s *DashboardService) flatRows(ctx context.Context, day string) ([]models.FlatSaleRecord, error) {
	r, err := report.TimeRangeForDay(day, s.offsetHours)
	if err != nil {
		return nil, err
	}

	var (
		catalog            []models.Item
		sales              []models.SaleTransaction
		itemsErr, salesErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		catalog, itemsErr = s.content.ListItems(ctx)
		return nil
	})
	g.Go(func() error {
		sales, salesErr = s.content.ListSales(ctx, r)
		return nil
	})
	_ = g.Wait()
	if itemsErr != nil {
		return nil, upstream(ResourceItems, itemsErr)
	}
	if salesErr != nil {
		return nil, upstream(ResourceSales, salesErr)
	}

	rows := report.FlattenSales(sales, report.NewPriceBook(catalog), report.Zone(s.offsetHours))
	report.SortByCreatedAtDesc(rows)
	return rows, nil
}

func (s *DashboardService) fetchFailed(span trace.Span, view, day string, err error) {
	util.RecordError(span, err)

	resource := "unknown"
	var fetchErr *UpstreamFetchError
	if errors.As(err, &fetchErr) {
		resource = fetchErr.Resource
	}
	util.UpstreamFetchErrorsTotal.WithLabelValues(resource).Inc()

	s.logger.Error("Failed to load sales, serving empty report",
		zap.String("view", view),
		zap.String("day", day),
		zap.Error(err))
}
