package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

// GroupTotal is one raw aggregation row: a group key with its summed amount,
// record count, and average amount.
type GroupTotal struct {
	Key     string
	Total   float64
	Count   int
	Average float64
}

// TotalRow is the ungrouped single-row aggregation used by the overview.
type TotalRow struct {
	Total   float64
	Count   int
	Average float64
}

// MonthTotal is one calendar-month bucket within a year. The store only
// returns months that have records; densification to 12 rows happens in the
// aggregation engine.
type MonthTotal struct {
	Month int
	Total float64
	Count int
}

// ExpenseTotalsByCategory sums expenses per category, largest total first.
// Ties break on the category name so the order is stable.
func (r *SQLiteRepository) ExpenseTotalsByCategory(ctx context.Context, userID int64, f core.ExpenseFilter) ([]GroupTotal, error) {
	where, args := expenseWhere(userID, f)
	return r.groupTotals(ctx,
		`SELECT category, SUM(amount), COUNT(*), AVG(amount)
		 FROM expenses WHERE `+where+`
		 GROUP BY category
		 ORDER BY SUM(amount) DESC, category ASC`, args)
}

// SavingsTotalsByType sums savings per type, largest total first.
func (r *SQLiteRepository) SavingsTotalsByType(ctx context.Context, userID int64, f core.SavingsFilter) ([]GroupTotal, error) {
	where, args := savingsWhere(userID, f)
	return r.groupTotals(ctx,
		`SELECT type, SUM(amount), COUNT(*), AVG(amount)
		 FROM savings WHERE `+where+`
		 GROUP BY type
		 ORDER BY SUM(amount) DESC, type ASC`, args)
}

// ExpenseTotals returns the single-row total over all matching expenses.
func (r *SQLiteRepository) ExpenseTotals(ctx context.Context, userID int64, f core.ExpenseFilter) (TotalRow, error) {
	where, args := expenseWhere(userID, f)
	return r.totalRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*), COALESCE(AVG(amount), 0)
		 FROM expenses WHERE `+where, args)
}

// SavingsTotals returns the single-row total over all matching savings.
func (r *SQLiteRepository) SavingsTotals(ctx context.Context, userID int64, f core.SavingsFilter) (TotalRow, error) {
	where, args := savingsWhere(userID, f)
	return r.totalRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*), COALESCE(AVG(amount), 0)
		 FROM savings WHERE `+where, args)
}

// ExpenseMonthlyTotals sums expenses per calendar month of the given year.
func (r *SQLiteRepository) ExpenseMonthlyTotals(ctx context.Context, userID int64, year int) ([]MonthTotal, error) {
	return r.monthTotals(ctx, "expenses", userID, year)
}

// SavingsMonthlyTotals sums savings per calendar month of the given year.
func (r *SQLiteRepository) SavingsMonthlyTotals(ctx context.Context, userID int64, year int) ([]MonthTotal, error) {
	return r.monthTotals(ctx, "savings", userID, year)
}

// ExpenseTrend buckets matching expenses by calendar day, ISO week, or month,
// in chronological bucket order.
func (r *SQLiteRepository) ExpenseTrend(ctx context.Context, userID int64, f core.ExpenseFilter, groupBy core.TrendGroupBy) ([]GroupTotal, error) {
	where, args := expenseWhere(userID, f)
	key := trendKeyExpr(groupBy)
	return r.groupTotals(ctx,
		`SELECT `+key+` AS bucket, SUM(amount), COUNT(*), AVG(amount)
		 FROM expenses WHERE `+where+`
		 GROUP BY bucket
		 ORDER BY bucket ASC`, args)
}

// SavingsTrend buckets matching savings the same way.
func (r *SQLiteRepository) SavingsTrend(ctx context.Context, userID int64, f core.SavingsFilter, groupBy core.TrendGroupBy) ([]GroupTotal, error) {
	where, args := savingsWhere(userID, f)
	key := trendKeyExpr(groupBy)
	return r.groupTotals(ctx,
		`SELECT `+key+` AS bucket, SUM(amount), COUNT(*), AVG(amount)
		 FROM savings WHERE `+where+`
		 GROUP BY bucket
		 ORDER BY bucket ASC`, args)
}

// trendKeyExpr maps a validated groupBy mode to its SQLite bucket expression.
// %G/%V give ISO week-year and week number.
func trendKeyExpr(groupBy core.TrendGroupBy) string {
	switch groupBy {
	case core.GroupByDay:
		return `strftime('%Y-%m-%d', date)`
	case core.GroupByWeek:
		return `strftime('%G-W%V', date)`
	default:
		return `strftime('%Y-%m', date)`
	}
}

func (r *SQLiteRepository) groupTotals(ctx context.Context, query string, args []any) ([]GroupTotal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouped totals: %w", err)
	}
	defer rows.Close()

	var out []GroupTotal
	for rows.Next() {
		var g GroupTotal
		if err := rows.Scan(&g.Key, &g.Total, &g.Count, &g.Average); err != nil {
			return nil, fmt.Errorf("scan grouped total: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grouped totals: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) totalRow(ctx context.Context, query string, args []any) (TotalRow, error) {
	var t TotalRow
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.Total, &t.Count, &t.Average); err != nil {
		return TotalRow{}, fmt.Errorf("total row: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) monthTotals(ctx context.Context, table string, userID int64, year int) ([]MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(strftime('%m', date) AS INTEGER) AS month, SUM(amount), COUNT(*)
		 FROM `+table+`
		 WHERE user_id = ? AND strftime('%Y', date) = ?
		 GROUP BY month
		 ORDER BY month ASC`,
		userID, strconv.Itoa(year))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var m MonthTotal
		if err := rows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return out, nil
}
