package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, email string) int64 {
	t.Helper()
	u := &core.User{Email: email, Name: "Test", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u.ID
}

func expenseOn(userID int64, date string, amount float64, category core.Category) *core.ExpenseRecord {
	d, _ := time.Parse("2006-01-02", date)
	return &core.ExpenseRecord{
		UserID:        userID,
		Amount:        amount,
		Currency:      core.CurrencyUGX,
		Category:      category,
		Date:          d,
		PaymentMethod: core.PayCash,
	}
}

func savingsOn(userID int64, date string, amount float64, typ core.SavingsType) *core.SavingsRecord {
	d, _ := time.Parse("2006-01-02", date)
	return &core.SavingsRecord{
		UserID:   userID,
		Amount:   amount,
		Currency: core.CurrencyUGX,
		Type:     typ,
		Category: core.SavCatEmergency,
		Date:     d,
		Period:   core.Period{StartDate: d, EndDate: d.AddDate(0, 1, 0)},
		IsActive: true,
	}
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "crud@example.com")

	e := expenseOn(userID, "2026-03-14", 2500, core.CatFood)
	e.Tags = []string{"lunch", "work"}
	require.NoError(t, repo.CreateExpense(ctx, e))
	require.NotZero(t, e.ID)

	got, err := repo.GetExpense(ctx, userID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.Amount)
	assert.Equal(t, core.CatFood, got.Category)
	assert.Equal(t, []string{"lunch", "work"}, got.Tags)
	assert.Equal(t, core.PayCash, got.PaymentMethod)

	got.Amount = 3000
	got.Category = core.CatTravel
	require.NoError(t, repo.UpdateExpense(ctx, got))

	updated, err := repo.GetExpense(ctx, userID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, updated.Amount)
	assert.Equal(t, core.CatTravel, updated.Category)

	require.NoError(t, repo.DeleteExpense(ctx, userID, e.ID))
	_, err = repo.GetExpense(ctx, userID, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpenseOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	e := expenseOn(alice, "2026-01-10", 100, core.CatFood)
	require.NoError(t, repo.CreateExpense(ctx, e))

	// A foreign record reads exactly like a missing one.
	_, err := repo.GetExpense(ctx, bob, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, bob, e.ID), core.ErrNotFound)

	foreign := *e
	foreign.UserID = bob
	foreign.Amount = 999
	assert.ErrorIs(t, repo.UpdateExpense(ctx, &foreign), core.ErrNotFound)

	// The record is untouched.
	got, err := repo.GetExpense(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Amount)
}

func TestBulkDeleteSkipsForeignIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	e1 := expenseOn(alice, "2026-01-01", 10, core.CatFood)
	e2 := expenseOn(bob, "2026-01-02", 20, core.CatFood)
	e3 := expenseOn(alice, "2026-01-03", 30, core.CatFood)
	for _, e := range []*core.ExpenseRecord{e1, e2, e3} {
		require.NoError(t, repo.CreateExpense(ctx, e))
	}

	deleted, err := repo.BulkDeleteExpenses(ctx, alice, []int64{e1.ID, e2.ID, e3.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	// Bob's record survives.
	_, err = repo.GetExpense(ctx, bob, e2.ID)
	assert.NoError(t, err)
}

func TestListExpensesFilterAndPaginate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "list@example.com")

	dates := []string{"2026-01-05", "2026-02-10", "2026-03-15", "2026-04-20", "2026-05-25"}
	for i, d := range dates {
		e := expenseOn(userID, d, float64(100*(i+1)), core.CatFood)
		if i%2 == 1 {
			e.Category = core.CatTravel
		}
		require.NoError(t, repo.CreateExpense(ctx, e))
	}

	// Category filter.
	travel := core.CatTravel
	items, total, err := repo.ListExpenses(ctx, userID, core.ExpenseFilter{Category: &travel}, core.DefaultListOptions())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	// Amount range, one-sided.
	min := 300.0
	items, total, err = repo.ListExpenses(ctx, userID, core.ExpenseFilter{MinAmount: &min}, core.DefaultListOptions())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Amount, 300.0)
	}

	// Date range.
	items, total, err = repo.ListExpenses(ctx, userID, core.ExpenseFilter{
		StartDate: ts("2026-02-01"), EndDate: ts("2026-04-30"),
	}, core.DefaultListOptions())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	// Pagination window.
	opts := core.ListOptions{SortBy: core.SortByAmount, SortOrder: core.SortAsc, Page: 2, Limit: 2}
	items, total, err = repo.ListExpenses(ctx, userID, core.ExpenseFilter{}, opts)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, 300.0, items[0].Amount)
	assert.Equal(t, 400.0, items[1].Amount)
}

func TestSavingsGoalPersistedInvariant(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "goal@example.com")

	s := savingsOn(userID, "2026-01-01", 50, core.TypeGoal)
	s.Goal = &core.Goal{TargetAmount: 200}
	require.NoError(t, repo.CreateSavings(ctx, s))

	got, err := repo.GetSavings(ctx, userID, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Goal)
	assert.Equal(t, 25.0, got.Goal.Progress)
	assert.False(t, got.Goal.IsCompleted)

	// Updating the amount through the write path recomputes the invariant.
	got.Amount = 200
	require.NoError(t, repo.UpdateSavings(ctx, got))
	got, err = repo.GetSavings(ctx, userID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Goal.Progress)
	assert.True(t, got.Goal.IsCompleted)
}

func TestGroupedAggregation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "agg@example.com")

	seed := []struct {
		date     string
		amount   float64
		category core.Category
	}{
		{"2026-01-10", 100, core.CatFood},
		{"2026-01-20", 300, core.CatFood},
		{"2026-02-05", 150, core.CatTravel},
		{"2026-02-15", 50, core.CatUtilities},
	}
	for _, s := range seed {
		require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, s.date, s.amount, s.category)))
	}
	// Another user's data never leaks into aggregates.
	other := newTestUser(t, repo, "other@example.com")
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(other, "2026-01-11", 9999, core.CatFood)))

	rows, err := repo.ExpenseTotalsByCategory(ctx, userID, core.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, string(core.CatFood), rows[0].Key)
	assert.Equal(t, 400.0, rows[0].Total)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, 200.0, rows[0].Average)
	assert.Equal(t, string(core.CatTravel), rows[1].Key)
	assert.Equal(t, string(core.CatUtilities), rows[2].Key)

	totals, err := repo.ExpenseTotals(ctx, userID, core.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 600.0, totals.Total)
	assert.Equal(t, 4, totals.Count)

	// Empty result set yields zeros, not an error.
	empty, err := repo.ExpenseTotals(ctx, userID, core.ExpenseFilter{StartDate: ts("2030-01-01")})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Count)
}

func TestMonthlyTotalsSparse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "monthly@example.com")

	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-03-10", 100, core.CatFood)))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-03-20", 50, core.CatFood)))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-11-01", 75, core.CatFood)))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2025-03-10", 999, core.CatFood)))

	rows, err := repo.ExpenseMonthlyTotals(ctx, userID, 2026)
	require.NoError(t, err)
	require.Len(t, rows, 2, "store returns only months with records")
	assert.Equal(t, 3, rows[0].Month)
	assert.Equal(t, 150.0, rows[0].Total)
	assert.Equal(t, 11, rows[1].Month)
	assert.Equal(t, 75.0, rows[1].Total)
}

func TestExpenseTrendBuckets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "trend@example.com")

	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-01-05", 10, core.CatFood)))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-01-05", 20, core.CatFood)))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-02-01", 40, core.CatFood)))

	byDay, err := repo.ExpenseTrend(ctx, userID, core.ExpenseFilter{}, core.GroupByDay)
	require.NoError(t, err)
	require.Len(t, byDay, 2)
	assert.Equal(t, "2026-01-05", byDay[0].Key)
	assert.Equal(t, 30.0, byDay[0].Total)
	assert.Equal(t, 2, byDay[0].Count)

	byMonth, err := repo.ExpenseTrend(ctx, userID, core.ExpenseFilter{}, core.GroupByMonth)
	require.NoError(t, err)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "2026-01", byMonth[0].Key)
	assert.Equal(t, "2026-02", byMonth[1].Key)
}

func TestStoredDatesReadableBySQLiteDateFunctions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "dates@example.com")

	// A date with a non-UTC offset is normalized before storage, so it lands
	// in the bucket of its UTC instant.
	offset := time.FixedZone("EAT", 3*60*60)
	e := &core.ExpenseRecord{
		UserID:        userID,
		Amount:        80,
		Currency:      core.CurrencyUGX,
		Category:      core.CatFood,
		Date:          time.Date(2026, 3, 1, 1, 30, 0, 0, offset), // 2026-02-28T22:30Z
		PaymentMethod: core.PayCash,
	}
	require.NoError(t, repo.CreateExpense(ctx, e))
	require.NoError(t, repo.CreateExpense(ctx, expenseOn(userID, "2026-03-05", 300, core.CatFood)))

	months, err := repo.ExpenseMonthlyTotals(ctx, userID, 2026)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, 2, months[0].Month)
	assert.Equal(t, 80.0, months[0].Total)
	assert.Equal(t, 3, months[1].Month)
	assert.Equal(t, 300.0, months[1].Total)

	byDay, err := repo.ExpenseTrend(ctx, userID, core.ExpenseFilter{}, core.GroupByDay)
	require.NoError(t, err)
	require.Len(t, byDay, 2)
	assert.Equal(t, "2026-02-28", byDay[0].Key)
	assert.Equal(t, "2026-03-05", byDay[1].Key)

	got, err := repo.GetExpense(ctx, userID, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(time.Date(2026, 2, 28, 22, 30, 0, 0, time.UTC)))
}

func TestSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo, "session@example.com")
	now := time.Now().UTC()

	require.NoError(t, repo.CreateSession(ctx, "tok-live", userID, now.Add(time.Hour)))
	require.NoError(t, repo.CreateSession(ctx, "tok-dead", userID, now.Add(-time.Hour)))

	got, err := repo.SessionUser(ctx, "tok-live", now)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = repo.SessionUser(ctx, "tok-dead", now)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.SessionUser(ctx, "tok-missing", now)
	assert.ErrorIs(t, err, core.ErrNotFound)

	purged, err := repo.PurgeExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	require.NoError(t, repo.DeleteSession(ctx, "tok-live"))
	_, err = repo.SessionUser(ctx, "tok-live", now)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
