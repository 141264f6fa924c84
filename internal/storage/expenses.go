package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

const expenseColumns = `id, user_id, amount, currency, category, subcategory, description,
	location, notes, date, payment_method, is_recurring, recurring_frequency, tags,
	receipt_url, receipt_filename, receipt_uploaded_at, created_at, updated_at`

// CreateExpense normalizes and stores a new expense, setting its ID and
// timestamps.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.ExpenseRecord) error {
	now := time.Now().UTC()
	e.Normalize(now)
	e.CreatedAt = now
	e.UpdatedAt = now

	tags, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}

	var receiptURL, receiptFilename string
	var receiptUploadedAt any
	if e.Receipt != nil {
		receiptURL = e.Receipt.URL
		receiptFilename = e.Receipt.Filename
		if !e.Receipt.UploadedAt.IsZero() {
			receiptUploadedAt = e.Receipt.UploadedAt.UTC()
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, currency, category, subcategory, description,
		 location, notes, date, payment_method, is_recurring, recurring_frequency, tags,
		 receipt_url, receipt_filename, receipt_uploaded_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Amount, e.Currency, e.Category, e.Subcategory, e.Description,
		e.Location, e.Notes, e.Date, e.PaymentMethod, e.IsRecurring, e.RecurringFrequency, tags,
		receiptURL, receiptFilename, receiptUploadedAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "expense saved",
		"record_id", e.ID, "user_id", e.UserID, "category", e.Category, "amount", e.Amount)
	return nil
}

// GetExpense returns an expense by ID scoped to its owner. A record that does
// not exist and a record owned by someone else produce the same ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (*core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns one page of matching expenses plus the total match
// count for pagination metadata.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, f core.ExpenseFilter, opts core.ListOptions) ([]core.ExpenseRecord, int64, error) {
	where, args := expenseWhere(userID, f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where + ` ` +
		orderBy(opts) + ` LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, core.Skip(opts.Page, opts.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, total, nil
}

// UpdateExpense persists the full record, re-normalizing first. The owner
// scope is part of the UPDATE predicate; zero affected rows means not found.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e *core.ExpenseRecord) error {
	now := time.Now().UTC()
	e.Normalize(now)
	e.UpdatedAt = now

	tags, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}

	var receiptURL, receiptFilename string
	var receiptUploadedAt any
	if e.Receipt != nil {
		receiptURL = e.Receipt.URL
		receiptFilename = e.Receipt.Filename
		if !e.Receipt.UploadedAt.IsZero() {
			receiptUploadedAt = e.Receipt.UploadedAt.UTC()
		}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, currency = ?, category = ?, subcategory = ?,
		 description = ?, location = ?, notes = ?, date = ?, payment_method = ?,
		 is_recurring = ?, recurring_frequency = ?, tags = ?,
		 receipt_url = ?, receipt_filename = ?, receipt_uploaded_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount, e.Currency, e.Category, e.Subcategory,
		e.Description, e.Location, e.Notes, e.Date, e.PaymentMethod,
		e.IsRecurring, e.RecurringFrequency, tags,
		receiptURL, receiptFilename, receiptUploadedAt, e.UpdatedAt,
		e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteExpense removes one owner-scoped expense.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// BulkDeleteExpenses deletes every listed ID the user owns and reports how
// many rows actually went away; unknown or foreign IDs are skipped silently.
func (r *SQLiteRepository) BulkDeleteExpenses(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete expenses: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.ExpenseRecord, error) {
	var (
		e                 core.ExpenseRecord
		tagsRaw           string
		receiptURL        string
		receiptFilename   string
		receiptUploadedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Currency, &e.Category, &e.Subcategory,
		&e.Description, &e.Location, &e.Notes, &e.Date, &e.PaymentMethod,
		&e.IsRecurring, &e.RecurringFrequency, &tagsRaw,
		&receiptURL, &receiptFilename, &receiptUploadedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	if e.Tags, err = unmarshalTags(tagsRaw); err != nil {
		return nil, err
	}
	if receiptURL != "" || receiptFilename != "" {
		e.Receipt = &core.Receipt{URL: receiptURL, Filename: receiptFilename}
		if receiptUploadedAt.Valid {
			e.Receipt.UploadedAt = receiptUploadedAt.Time
		}
	}
	return &e, nil
}
