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

const savingsColumns = `id, user_id, amount, currency, type, category, date,
	period_start, period_end, goal_target_amount, goal_target_date, goal_is_completed,
	goal_progress, source, is_recurring, recurring_amount, recurring_frequency, tags,
	notes, is_active, created_at, updated_at`

// CreateSavings normalizes and stores a new savings record. Normalize runs in
// this write path, so the goal progress persisted is always derived from the
// amount persisted.
func (r *SQLiteRepository) CreateSavings(ctx context.Context, s *core.SavingsRecord) error {
	now := time.Now().UTC()
	s.Normalize(now)
	s.CreatedAt = now
	s.UpdatedAt = now

	tags, err := marshalTags(s.Tags)
	if err != nil {
		return err
	}

	var goalTarget any
	var goalDate any
	var goalDone bool
	var goalProgress float64
	if s.Goal != nil {
		goalTarget = s.Goal.TargetAmount
		if s.Goal.TargetDate != nil {
			goalDate = s.Goal.TargetDate.UTC()
		}
		goalDone = s.Goal.IsCompleted
		goalProgress = s.Goal.Progress
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings (user_id, amount, currency, type, category, date,
		 period_start, period_end, goal_target_amount, goal_target_date, goal_is_completed,
		 goal_progress, source, is_recurring, recurring_amount, recurring_frequency, tags,
		 notes, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Amount, s.Currency, s.Type, s.Category, s.Date,
		s.Period.StartDate, s.Period.EndDate, goalTarget, goalDate, goalDone,
		goalProgress, s.Source, s.IsRecurring, s.RecurringAmount, s.RecurringFrequency, tags,
		s.Notes, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert savings: %w", err)
	}

	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("savings insert id: %w", err)
	}

	slog.InfoContext(ctx, "savings saved",
		"record_id", s.ID, "user_id", s.UserID, "savings_type", s.Type, "amount", s.Amount)
	return nil
}

// GetSavings returns a savings record scoped to its owner; missing and
// foreign records are indistinguishable.
func (r *SQLiteRepository) GetSavings(ctx context.Context, userID, id int64) (*core.SavingsRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+savingsColumns+` FROM savings WHERE id = ? AND user_id = ?`, id, userID)
	return scanSavings(row)
}

// ListSavings returns one page of matching savings plus the total match count.
func (r *SQLiteRepository) ListSavings(ctx context.Context, userID int64, f core.SavingsFilter, opts core.ListOptions) ([]core.SavingsRecord, int64, error) {
	where, args := savingsWhere(userID, f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM savings WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count savings: %w", err)
	}

	query := `SELECT ` + savingsColumns + ` FROM savings WHERE ` + where + ` ` +
		orderBy(opts) + ` LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, core.Skip(opts.Page, opts.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsRecord
	for rows.Next() {
		s, err := scanSavings(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate savings: %w", err)
	}
	return out, total, nil
}

// UpdateSavings persists the full record after re-normalizing, which
// recomputes the goal invariant in the same write path.
func (r *SQLiteRepository) UpdateSavings(ctx context.Context, s *core.SavingsRecord) error {
	now := time.Now().UTC()
	s.Normalize(now)
	s.UpdatedAt = now

	tags, err := marshalTags(s.Tags)
	if err != nil {
		return err
	}

	var goalTarget any
	var goalDate any
	var goalDone bool
	var goalProgress float64
	if s.Goal != nil {
		goalTarget = s.Goal.TargetAmount
		if s.Goal.TargetDate != nil {
			goalDate = s.Goal.TargetDate.UTC()
		}
		goalDone = s.Goal.IsCompleted
		goalProgress = s.Goal.Progress
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE savings SET amount = ?, currency = ?, type = ?, category = ?, date = ?,
		 period_start = ?, period_end = ?, goal_target_amount = ?, goal_target_date = ?,
		 goal_is_completed = ?, goal_progress = ?, source = ?, is_recurring = ?,
		 recurring_amount = ?, recurring_frequency = ?, tags = ?, notes = ?, is_active = ?,
		 updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		s.Amount, s.Currency, s.Type, s.Category, s.Date,
		s.Period.StartDate, s.Period.EndDate, goalTarget, goalDate,
		goalDone, goalProgress, s.Source, s.IsRecurring,
		s.RecurringAmount, s.RecurringFrequency, tags, s.Notes, s.IsActive,
		s.UpdatedAt,
		s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update savings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update savings rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteSavings removes one owner-scoped savings record.
func (r *SQLiteRepository) DeleteSavings(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete savings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// BulkDeleteSavings deletes every listed ID the user owns and reports the
// actual count.
func (r *SQLiteRepository) BulkDeleteSavings(ctx context.Context, userID int64, ids []int64) (int64, error) {
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
		`DELETE FROM savings WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete savings: %w", err)
	}
	return res.RowsAffected()
}

func scanSavings(row rowScanner) (*core.SavingsRecord, error) {
	var (
		s            core.SavingsRecord
		tagsRaw      string
		goalTarget   sql.NullFloat64
		goalDate     sql.NullTime
		goalDone     bool
		goalProgress float64
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Amount, &s.Currency, &s.Type, &s.Category, &s.Date,
		&s.Period.StartDate, &s.Period.EndDate, &goalTarget, &goalDate, &goalDone,
		&goalProgress, &s.Source, &s.IsRecurring, &s.RecurringAmount, &s.RecurringFrequency,
		&tagsRaw, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan savings: %w", err)
	}

	if s.Tags, err = unmarshalTags(tagsRaw); err != nil {
		return nil, err
	}
	if goalTarget.Valid {
		s.Goal = &core.Goal{
			TargetAmount: goalTarget.Float64,
			IsCompleted:  goalDone,
			Progress:     goalProgress,
		}
		if goalDate.Valid {
			t := goalDate.Time
			s.Goal.TargetDate = &t
		}
	}
	return &s, nil
}
