package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

// Filter building. Every predicate starts with the mandatory owner clause;
// each supplied criterion adds exactly one clause, absent criteria add
// nothing. Bounds are inclusive and one-sided bounds are allowed.

func expenseWhere(userID int64, f core.ExpenseFilter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if f.StartDate != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.UTC())
	}
	if f.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, string(*f.Category))
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.PaymentMethod != nil {
		conds = append(conds, "payment_method = ?")
		args = append(args, string(*f.PaymentMethod))
	}
	if f.Currency != nil {
		conds = append(conds, "currency = ?")
		args = append(args, string(*f.Currency))
	}

	return strings.Join(conds, " AND "), args
}

func savingsWhere(userID int64, f core.SavingsFilter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if f.StartDate != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.UTC())
	}
	if f.Type != nil {
		conds = append(conds, "type = ?")
		args = append(args, string(*f.Type))
	}
	if f.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, string(*f.Category))
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.Currency != nil {
		conds = append(conds, "currency = ?")
		args = append(args, string(*f.Currency))
	}

	return strings.Join(conds, " AND "), args
}

// orderBy maps validated sort options to a SQL ORDER BY expression. SortBy is
// whitelisted at the boundary, so the switch is exhaustive over legal values.
func orderBy(opts core.ListOptions) string {
	col := "date"
	switch opts.SortBy {
	case core.SortByAmount:
		col = "amount"
	case core.SortByCategory:
		col = "category"
	case core.SortByCreated:
		col = "created_at"
	}
	dir := "DESC"
	if opts.SortOrder == core.SortAsc {
		dir = "ASC"
	}
	// Secondary id key keeps pagination stable across equal values.
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir)
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(b), nil
}

func unmarshalTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return tags, nil
}
