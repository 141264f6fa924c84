package core

import "time"

// Filter criteria use pointer optionals so that an explicitly supplied zero is
// distinguishable from an absent criterion: minAmount=0 is a real lower bound,
// not a missing one.

// ExpenseFilter holds the optional criteria for expense queries. All bounds
// are inclusive.
type ExpenseFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Category      *Category
	MinAmount     *float64
	MaxAmount     *float64
	PaymentMethod *PaymentMethod
	Currency      *Currency
}

// SavingsFilter holds the optional criteria for savings queries.
type SavingsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *SavingsType
	Category  *SavingsCat
	MinAmount *float64
	MaxAmount *float64
	Currency  *Currency
}

// SortOrder is the direction of a list sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable column identifiers accepted by list endpoints. Anything else is
// rejected at the boundary so user input never reaches SQL.
const (
	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByCategory = "category"
	SortByCreated  = "createdAt"
)

// ListOptions carries sorting and windowing for list queries.
type ListOptions struct {
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// DefaultListOptions sorts newest first with the default page size.
func DefaultListOptions() ListOptions {
	return ListOptions{
		SortBy:    SortByDate,
		SortOrder: SortDesc,
		Page:      MinPage,
		Limit:     DefaultLimit,
	}
}

// ValidSortBy reports whether s names a sortable column.
func ValidSortBy(s string) bool {
	switch s {
	case SortByDate, SortByAmount, SortByCategory, SortByCreated:
		return true
	}
	return false
}

// TrendGroupBy selects the calendar bucket for trend aggregation.
type TrendGroupBy string

const (
	GroupByDay   TrendGroupBy = "day"
	GroupByWeek  TrendGroupBy = "week"
	GroupByMonth TrendGroupBy = "month"
)

func (g TrendGroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth:
		return true
	}
	return false
}
