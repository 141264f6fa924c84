package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/storage"
)

// AnalyticsStore is the aggregation surface the analytics service reads from.
type AnalyticsStore interface {
	ExpenseTotalsByCategory(ctx context.Context, userID int64, f core.ExpenseFilter) ([]storage.GroupTotal, error)
	SavingsTotalsByType(ctx context.Context, userID int64, f core.SavingsFilter) ([]storage.GroupTotal, error)
	ExpenseTotals(ctx context.Context, userID int64, f core.ExpenseFilter) (storage.TotalRow, error)
	SavingsTotals(ctx context.Context, userID int64, f core.SavingsFilter) (storage.TotalRow, error)
	ExpenseMonthlyTotals(ctx context.Context, userID int64, year int) ([]storage.MonthTotal, error)
	SavingsMonthlyTotals(ctx context.Context, userID int64, year int) ([]storage.MonthTotal, error)
	ExpenseTrend(ctx context.Context, userID int64, f core.ExpenseFilter, groupBy core.TrendGroupBy) ([]storage.GroupTotal, error)
	SavingsTrend(ctx context.Context, userID int64, f core.SavingsFilter, groupBy core.TrendGroupBy) ([]storage.GroupTotal, error)
}

// AnalyticsService derives read-only summaries, pie charts, trends and the
// account overview from stored records.
type AnalyticsService struct {
	store  AnalyticsStore
	logger *log.Logger
}

func NewAnalyticsService(store AnalyticsStore, logger *log.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		logger: logger.WithComponent(log.ComponentAnalytics),
	}
}

// PeriodEcho repeats the date bounds a result was computed over.
type PeriodEcho struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// SummaryRow is one group in a grouped summary, with its share of the total.
type SummaryRow struct {
	Key        string  `json:"key"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// Summary is a grouped aggregation over one record kind.
type Summary struct {
	Rows       []SummaryRow `json:"rows"`
	TotalCount int          `json:"totalCount"`
	GrandTotal float64      `json:"grandTotal"`
	Period     PeriodEcho   `json:"period"`
}

// TrendPoint is one calendar bucket in a trend series.
type TrendPoint struct {
	Period  string  `json:"period"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Trend is a chronological series of bucket totals.
type Trend struct {
	GroupBy core.TrendGroupBy `json:"groupBy"`
	Points  []TrendPoint      `json:"points"`
	Period  PeriodEcho        `json:"period"`
}

// MonthRow is one of the twelve months in a yearly breakdown. Months
// without records carry zeros.
type MonthRow struct {
	Month        int     `json:"month"`
	MonthName    string  `json:"monthName"`
	Expenses     float64 `json:"expenses"`
	ExpenseCount int     `json:"expenseCount"`
	Savings      float64 `json:"savings"`
	SavingsCount int     `json:"savingsCount"`
	Net          float64 `json:"net"`
}

// MonthlyTrends is the full-year month-by-month comparison of expenses
// and savings.
type MonthlyTrends struct {
	Year                   int        `json:"year"`
	Months                 []MonthRow `json:"months"`
	TotalExpenses          float64    `json:"totalExpenses"`
	TotalSavings           float64    `json:"totalSavings"`
	NetSavings             float64    `json:"netSavings"`
	AverageMonthlyExpenses float64    `json:"averageMonthlyExpenses"`
	AverageMonthlySavings  float64    `json:"averageMonthlySavings"`
}

// Overview is the combined financial position across both record kinds.
type Overview struct {
	TotalExpenses        float64      `json:"totalExpenses"`
	ExpenseCount         int          `json:"expenseCount"`
	TotalSavings         float64      `json:"totalSavings"`
	SavingsCount         int          `json:"savingsCount"`
	NetWorth             float64      `json:"netWorth"`
	SavingsRate          float64      `json:"savingsRate"`
	TopExpenseCategories []SummaryRow `json:"topExpenseCategories"`
	TopSavingsTypes      []SummaryRow `json:"topSavingsTypes"`
	Period               PeriodEcho   `json:"period"`
}

const overviewTopN = 5

// ExpenseSummary groups matching expenses by category, largest first.
func (s *AnalyticsService) ExpenseSummary(ctx context.Context, userID int64, f core.ExpenseFilter) (*Summary, error) {
	groups, err := s.store.ExpenseTotalsByCategory(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return buildSummary(groups, PeriodEcho{StartDate: f.StartDate, EndDate: f.EndDate}), nil
}

// SavingsSummary groups matching savings by type, largest first.
func (s *AnalyticsService) SavingsSummary(ctx context.Context, userID int64, f core.SavingsFilter) (*Summary, error) {
	groups, err := s.store.SavingsTotalsByType(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return buildSummary(groups, PeriodEcho{StartDate: f.StartDate, EndDate: f.EndDate}), nil
}

// ExpenseTrend buckets matching expenses by calendar period, oldest first.
func (s *AnalyticsService) ExpenseTrend(ctx context.Context, userID int64, f core.ExpenseFilter, groupBy core.TrendGroupBy) (*Trend, error) {
	if !groupBy.Valid() {
		groupBy = core.GroupByMonth
	}
	groups, err := s.store.ExpenseTrend(ctx, userID, f, groupBy)
	if err != nil {
		return nil, err
	}
	return buildTrend(groups, groupBy, PeriodEcho{StartDate: f.StartDate, EndDate: f.EndDate}), nil
}

// SavingsTrend buckets matching savings by calendar period, oldest first.
func (s *AnalyticsService) SavingsTrend(ctx context.Context, userID int64, f core.SavingsFilter, groupBy core.TrendGroupBy) (*Trend, error) {
	if !groupBy.Valid() {
		groupBy = core.GroupByMonth
	}
	groups, err := s.store.SavingsTrend(ctx, userID, f, groupBy)
	if err != nil {
		return nil, err
	}
	return buildTrend(groups, groupBy, PeriodEcho{StartDate: f.StartDate, EndDate: f.EndDate}), nil
}

// MonthlyTrends compares expenses and savings month by month for one year.
// The result always carries exactly twelve months, January through December.
func (s *AnalyticsService) MonthlyTrends(ctx context.Context, userID int64, year int) (*MonthlyTrends, error) {
	var expenses, savings []storage.MonthTotal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ExpenseMonthlyTotals(gctx, userID, year)
		return err
	})
	g.Go(func() error {
		var err error
		savings, err = s.store.SavingsMonthlyTotals(gctx, userID, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &MonthlyTrends{
		Year:   year,
		Months: make([]MonthRow, 12),
	}
	for i := range out.Months {
		m := i + 1
		out.Months[i] = MonthRow{
			Month:     m,
			MonthName: time.Month(m).String(),
		}
	}
	for _, e := range expenses {
		if e.Month < 1 || e.Month > 12 {
			continue
		}
		row := &out.Months[e.Month-1]
		row.Expenses = core.Round2(e.Total)
		row.ExpenseCount = e.Count
		out.TotalExpenses += e.Total
	}
	for _, v := range savings {
		if v.Month < 1 || v.Month > 12 {
			continue
		}
		row := &out.Months[v.Month-1]
		row.Savings = core.Round2(v.Total)
		row.SavingsCount = v.Count
		out.TotalSavings += v.Total
	}
	monthlyExpenses := make([]float64, 12)
	monthlySavings := make([]float64, 12)
	for i := range out.Months {
		row := &out.Months[i]
		row.Net = core.Round2(row.Savings - row.Expenses)
		monthlyExpenses[i] = row.Expenses
		monthlySavings[i] = row.Savings
	}
	out.TotalExpenses = core.Round2(out.TotalExpenses)
	out.TotalSavings = core.Round2(out.TotalSavings)
	out.NetSavings = core.NetWorth(out.TotalSavings, out.TotalExpenses)
	out.AverageMonthlyExpenses = core.AverageMonthly(monthlyExpenses)
	out.AverageMonthlySavings = core.AverageMonthly(monthlySavings)

	s.logger.Debug("monthly trends computed",
		log.FieldUserID, userID,
		log.FieldYear, year,
	)
	return out, nil
}

// Overview combines expense and savings totals into the derived position
// metrics plus the largest groups on each side.
func (s *AnalyticsService) Overview(ctx context.Context, userID int64, ef core.ExpenseFilter, sf core.SavingsFilter) (*Overview, error) {
	var (
		expenseTotals storage.TotalRow
		savingsTotals storage.TotalRow
		byCategory    []storage.GroupTotal
		byType        []storage.GroupTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenseTotals, err = s.store.ExpenseTotals(gctx, userID, ef)
		return err
	})
	g.Go(func() error {
		var err error
		savingsTotals, err = s.store.SavingsTotals(gctx, userID, sf)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.store.ExpenseTotalsByCategory(gctx, userID, ef)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.store.SavingsTotalsByType(gctx, userID, sf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		TotalExpenses:        core.Round2(expenseTotals.Total),
		ExpenseCount:         expenseTotals.Count,
		TotalSavings:         core.Round2(savingsTotals.Total),
		SavingsCount:         savingsTotals.Count,
		NetWorth:             core.NetWorth(savingsTotals.Total, expenseTotals.Total),
		SavingsRate:          core.SavingsRate(savingsTotals.Total, expenseTotals.Total),
		TopExpenseCategories: topRows(buildRows(byCategory, expenseTotals.Total), overviewTopN),
		TopSavingsTypes:      topRows(buildRows(byType, savingsTotals.Total), overviewTopN),
		Period:               PeriodEcho{StartDate: ef.StartDate, EndDate: ef.EndDate},
	}, nil
}

func buildSummary(groups []storage.GroupTotal, period PeriodEcho) *Summary {
	var grand float64
	var count int
	for _, g := range groups {
		grand += g.Total
		count += g.Count
	}
	return &Summary{
		Rows:       buildRows(groups, grand),
		TotalCount: count,
		GrandTotal: core.Round2(grand),
		Period:     period,
	}
}

func buildRows(groups []storage.GroupTotal, grand float64) []SummaryRow {
	rows := make([]SummaryRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, SummaryRow{
			Key:        g.Key,
			Total:      core.Round2(g.Total),
			Count:      g.Count,
			Average:    core.Round2(g.Average),
			Percentage: core.PercentOfTotal(g.Total, grand),
			Color:      core.GroupColor(g.Key),
		})
	}
	return rows
}

func buildTrend(groups []storage.GroupTotal, groupBy core.TrendGroupBy, period PeriodEcho) *Trend {
	points := make([]TrendPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, TrendPoint{
			Period:  g.Key,
			Total:   core.Round2(g.Total),
			Count:   g.Count,
			Average: core.Round2(g.Average),
		})
	}
	return &Trend{GroupBy: groupBy, Points: points, Period: period}
}

func topRows(rows []SummaryRow, n int) []SummaryRow {
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
