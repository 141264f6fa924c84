package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/storage"
)

type fakeAnalyticsStore struct {
	byCategory    []storage.GroupTotal
	byType        []storage.GroupTotal
	expenseTotals storage.TotalRow
	savingsTotals storage.TotalRow
	expenseMonths []storage.MonthTotal
	savingsMonths []storage.MonthTotal
	trend         []storage.GroupTotal

	trendGroupBy core.TrendGroupBy
}

func (s *fakeAnalyticsStore) ExpenseTotalsByCategory(_ context.Context, _ int64, _ core.ExpenseFilter) ([]storage.GroupTotal, error) {
	return s.byCategory, nil
}

func (s *fakeAnalyticsStore) SavingsTotalsByType(_ context.Context, _ int64, _ core.SavingsFilter) ([]storage.GroupTotal, error) {
	return s.byType, nil
}

func (s *fakeAnalyticsStore) ExpenseTotals(_ context.Context, _ int64, _ core.ExpenseFilter) (storage.TotalRow, error) {
	return s.expenseTotals, nil
}

func (s *fakeAnalyticsStore) SavingsTotals(_ context.Context, _ int64, _ core.SavingsFilter) (storage.TotalRow, error) {
	return s.savingsTotals, nil
}

func (s *fakeAnalyticsStore) ExpenseMonthlyTotals(_ context.Context, _ int64, _ int) ([]storage.MonthTotal, error) {
	return s.expenseMonths, nil
}

func (s *fakeAnalyticsStore) SavingsMonthlyTotals(_ context.Context, _ int64, _ int) ([]storage.MonthTotal, error) {
	return s.savingsMonths, nil
}

func (s *fakeAnalyticsStore) ExpenseTrend(_ context.Context, _ int64, _ core.ExpenseFilter, groupBy core.TrendGroupBy) ([]storage.GroupTotal, error) {
	s.trendGroupBy = groupBy
	return s.trend, nil
}

func (s *fakeAnalyticsStore) SavingsTrend(_ context.Context, _ int64, _ core.SavingsFilter, groupBy core.TrendGroupBy) ([]storage.GroupTotal, error) {
	s.trendGroupBy = groupBy
	return s.trend, nil
}

func newTestAnalytics(store *fakeAnalyticsStore) *AnalyticsService {
	return NewAnalyticsService(store, log.New(log.Config{}))
}

func TestExpenseSummaryPercentagesAndColors(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{
		byCategory: []storage.GroupTotal{
			{Key: "Food", Total: 150, Count: 3, Average: 50},
			{Key: "Transportation", Total: 50, Count: 1, Average: 50},
		},
	})

	sum, err := svc.ExpenseSummary(context.Background(), 1, core.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 2)
	assert.Equal(t, 200.0, sum.GrandTotal)
	assert.Equal(t, 4, sum.TotalCount)

	assert.Equal(t, 75.0, sum.Rows[0].Percentage)
	assert.Equal(t, 25.0, sum.Rows[1].Percentage)
	assert.Equal(t, core.CategoryColor(core.CatFood), sum.Rows[0].Color)
	assert.Equal(t, core.CategoryColor(core.CatTransport), sum.Rows[1].Color)
}

func TestExpenseSummaryEmpty(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{})

	sum, err := svc.ExpenseSummary(context.Background(), 1, core.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, sum.Rows)
	assert.Zero(t, sum.GrandTotal)
}

func TestSavingsSummaryUnknownTypeGetsDefaultColor(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{
		byType: []storage.GroupTotal{
			{Key: "Monthly", Total: 300, Count: 3, Average: 100},
			{Key: "Legacy Type", Total: 100, Count: 1, Average: 100},
		},
	})

	sum, err := svc.SavingsSummary(context.Background(), 1, core.SavingsFilter{})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 2)
	assert.Equal(t, core.SavingsTypeColor(core.TypeMonthly), sum.Rows[0].Color)
	assert.Equal(t, core.DefaultColor, sum.Rows[1].Color)
}

func TestTrendDefaultsToMonthly(t *testing.T) {
	store := &fakeAnalyticsStore{
		trend: []storage.GroupTotal{
			{Key: "2025-01", Total: 100, Count: 2, Average: 50},
			{Key: "2025-02", Total: 40, Count: 1, Average: 40},
		},
	}
	svc := newTestAnalytics(store)

	trend, err := svc.ExpenseTrend(context.Background(), 1, core.ExpenseFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, core.GroupByMonth, store.trendGroupBy)
	assert.Equal(t, core.GroupByMonth, trend.GroupBy)
	require.Len(t, trend.Points, 2)
	assert.Equal(t, "2025-01", trend.Points[0].Period)
	assert.Equal(t, 100.0, trend.Points[0].Total)
}

func TestTrendHonorsGroupBy(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := newTestAnalytics(store)

	_, err := svc.SavingsTrend(context.Background(), 1, core.SavingsFilter{}, core.GroupByWeek)
	require.NoError(t, err)
	assert.Equal(t, core.GroupByWeek, store.trendGroupBy)
}

func TestMonthlyTrendsAlwaysTwelveMonths(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{
		expenseMonths: []storage.MonthTotal{
			{Month: 3, Total: 300, Count: 2},
			{Month: 11, Total: 120, Count: 1},
		},
		savingsMonths: []storage.MonthTotal{
			{Month: 3, Total: 500, Count: 1},
		},
	})

	trends, err := svc.MonthlyTrends(context.Background(), 1, 2025)
	require.NoError(t, err)
	require.Len(t, trends.Months, 12)

	for i, row := range trends.Months {
		assert.Equal(t, i+1, row.Month)
	}
	assert.Equal(t, "January", trends.Months[0].MonthName)
	assert.Equal(t, "December", trends.Months[11].MonthName)

	march := trends.Months[2]
	assert.Equal(t, 300.0, march.Expenses)
	assert.Equal(t, 2, march.ExpenseCount)
	assert.Equal(t, 500.0, march.Savings)
	assert.Equal(t, 200.0, march.Net)

	// untouched months stay zeroed
	feb := trends.Months[1]
	assert.Zero(t, feb.Expenses)
	assert.Zero(t, feb.Savings)
	assert.Zero(t, feb.Net)

	assert.Equal(t, 420.0, trends.TotalExpenses)
	assert.Equal(t, 500.0, trends.TotalSavings)
	assert.Equal(t, 80.0, trends.NetSavings)
	assert.Equal(t, 35.0, trends.AverageMonthlyExpenses)
	assert.InDelta(t, 41.67, trends.AverageMonthlySavings, 0.001)
}

func TestMonthlyTrendsEmptyYear(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{})

	trends, err := svc.MonthlyTrends(context.Background(), 1, 2019)
	require.NoError(t, err)
	require.Len(t, trends.Months, 12)
	assert.Zero(t, trends.TotalExpenses)
	assert.Zero(t, trends.AverageMonthlyExpenses)
}

func TestOverviewDerivedMetrics(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{
		expenseTotals: storage.TotalRow{Total: 400, Count: 4, Average: 100},
		savingsTotals: storage.TotalRow{Total: 600, Count: 2, Average: 300},
		byCategory: []storage.GroupTotal{
			{Key: "Food", Total: 250, Count: 2, Average: 125},
			{Key: "Housing", Total: 150, Count: 2, Average: 75},
		},
		byType: []storage.GroupTotal{
			{Key: "Monthly", Total: 600, Count: 2, Average: 300},
		},
	})

	ov, err := svc.Overview(context.Background(), 1, core.ExpenseFilter{}, core.SavingsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 400.0, ov.TotalExpenses)
	assert.Equal(t, 600.0, ov.TotalSavings)
	assert.Equal(t, 200.0, ov.NetWorth)
	assert.Equal(t, 150.0, ov.SavingsRate)
	require.Len(t, ov.TopExpenseCategories, 2)
	assert.Equal(t, 62.5, ov.TopExpenseCategories[0].Percentage)
	require.Len(t, ov.TopSavingsTypes, 1)
}

func TestOverviewZeroExpensesZeroRate(t *testing.T) {
	svc := newTestAnalytics(&fakeAnalyticsStore{
		savingsTotals: storage.TotalRow{Total: 600, Count: 2},
	})

	ov, err := svc.Overview(context.Background(), 1, core.ExpenseFilter{}, core.SavingsFilter{})
	require.NoError(t, err)
	assert.Zero(t, ov.SavingsRate)
	assert.Equal(t, 600.0, ov.NetWorth)
}

func TestOverviewTopFiveCap(t *testing.T) {
	groups := make([]storage.GroupTotal, 0, 8)
	for _, k := range []string{"Food", "Housing", "Utilities", "Travel", "Shopping", "Education", "Insurance", "Other"} {
		groups = append(groups, storage.GroupTotal{Key: k, Total: 10, Count: 1, Average: 10})
	}
	svc := newTestAnalytics(&fakeAnalyticsStore{
		expenseTotals: storage.TotalRow{Total: 80, Count: 8},
		byCategory:    groups,
	})

	ov, err := svc.Overview(context.Background(), 1, core.ExpenseFilter{}, core.SavingsFilter{})
	require.NoError(t, err)
	assert.Len(t, ov.TopExpenseCategories, 5)
}
