package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

const (
	minYear = 1970
	maxYear = 2100
)

// errBadBody is returned for request bodies that are not valid JSON of the
// expected shape.
var errBadBody = errors.New("malformed request body")

// decodeBody reads a JSON body into dst, rejecting unknown fields and
// trailing garbage.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	if dec.More() {
		return errBadBody
	}
	return nil
}

// parseDate accepts a date-only or full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// queryParser accumulates per-field failures while pulling typed values out
// of the query string. Invalid input is always reported, never coerced.
type queryParser struct {
	values url.Values
	ve     core.ValidationError
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) err() error {
	return p.ve.Err()
}

func (p *queryParser) date(key string) *time.Time {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		p.ve.Add(key, "must be an ISO 8601 date")
		return nil
	}
	return &t
}

// endOfDay extends a date-only upper bound to the end of that day so the
// bound stays inclusive.
func (p *queryParser) endDate(key string) *time.Time {
	t := p.date(key)
	if t == nil {
		return nil
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end
	}
	return t
}

func (p *queryParser) amount(key string) *float64 {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		p.ve.Add(key, "must be a number greater than or equal to 0")
		return nil
	}
	return &v
}

func (p *queryParser) intIn(key string, fallback, min, max int) int {
	raw := p.values.Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		p.ve.Add(key, "must be an integer between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return fallback
	}
	return v
}

func (p *queryParser) category(key string) *core.Category {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	c := core.Category(raw)
	if !c.Valid() {
		p.ve.Add(key, "is not a known expense category")
		return nil
	}
	return &c
}

func (p *queryParser) savingsType(key string) *core.SavingsType {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	t := core.SavingsType(raw)
	if !t.Valid() {
		p.ve.Add(key, "is not a known savings type")
		return nil
	}
	return &t
}

func (p *queryParser) savingsCategory(key string) *core.SavingsCat {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	c := core.SavingsCat(raw)
	if !c.Valid() {
		p.ve.Add(key, "is not a known savings category")
		return nil
	}
	return &c
}

func (p *queryParser) paymentMethod(key string) *core.PaymentMethod {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	m := core.PaymentMethod(raw)
	if !m.Valid() {
		p.ve.Add(key, "is not a known payment method")
		return nil
	}
	return &m
}

func (p *queryParser) currency(key string) *core.Currency {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	c := core.Currency(raw)
	if !c.Valid() {
		p.ve.Add(key, "is not a supported currency")
		return nil
	}
	return &c
}

func (p *queryParser) sort(opts *core.ListOptions) {
	if raw := p.values.Get("sortBy"); raw != "" {
		if !core.ValidSortBy(raw) {
			p.ve.Add("sortBy", "is not a sortable field")
		} else {
			opts.SortBy = raw
		}
	}
	if raw := p.values.Get("sortOrder"); raw != "" {
		switch core.SortOrder(raw) {
		case core.SortAsc, core.SortDesc:
			opts.SortOrder = core.SortOrder(raw)
		default:
			p.ve.Add("sortOrder", `must be "asc" or "desc"`)
		}
	}
}

func (p *queryParser) groupBy(key string) core.TrendGroupBy {
	raw := p.values.Get(key)
	if raw == "" {
		return core.GroupByMonth
	}
	g := core.TrendGroupBy(raw)
	if !g.Valid() {
		p.ve.Add(key, `must be "day", "week" or "month"`)
		return core.GroupByMonth
	}
	return g
}

func (p *queryParser) year(key string, fallback int) int {
	return p.intIn(key, fallback, minYear, maxYear)
}

// parseExpenseQuery extracts the expense filter and list options from the
// query string.
func parseExpenseQuery(r *http.Request) (core.ExpenseFilter, core.ListOptions, error) {
	p := newQueryParser(r)
	f := core.ExpenseFilter{
		StartDate:     p.date("startDate"),
		EndDate:       p.endDate("endDate"),
		Category:      p.category("category"),
		MinAmount:     p.amount("minAmount"),
		MaxAmount:     p.amount("maxAmount"),
		PaymentMethod: p.paymentMethod("paymentMethod"),
		Currency:      p.currency("currency"),
	}
	opts := parseListOptions(p)
	return f, opts, p.err()
}

// parseSavingsQuery extracts the savings filter and list options from the
// query string.
func parseSavingsQuery(r *http.Request) (core.SavingsFilter, core.ListOptions, error) {
	p := newQueryParser(r)
	f := core.SavingsFilter{
		StartDate: p.date("startDate"),
		EndDate:   p.endDate("endDate"),
		Type:      p.savingsType("type"),
		Category:  p.savingsCategory("category"),
		MinAmount: p.amount("minAmount"),
		MaxAmount: p.amount("maxAmount"),
		Currency:  p.currency("currency"),
	}
	opts := parseListOptions(p)
	return f, opts, p.err()
}

func parseListOptions(p *queryParser) core.ListOptions {
	opts := core.DefaultListOptions()
	opts.Page = p.intIn("page", core.MinPage, core.MinPage, 1<<30)
	opts.Limit = p.intIn("limit", core.DefaultLimit, core.MinLimit, core.MaxLimit)
	p.sort(&opts)
	return opts
}

// pathID reads the {id} path parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		var ve core.ValidationError
		ve.Add("id", "must be a positive integer")
		return 0, ve.Err()
	}
	return id, nil
}

// bulkDeleteRequest is the body of both bulk-delete endpoints.
type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func parseBulkDelete(r *http.Request) ([]int64, error) {
	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	var ve core.ValidationError
	if len(req.IDs) == 0 {
		ve.Add("ids", "must contain at least one id")
	}
	for _, id := range req.IDs {
		if id < 1 {
			ve.Add("ids", "must contain only positive integers")
			break
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return req.IDs, nil
}

// trendEntity picks which record kind a trend query runs over.
func trendEntity(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("entity"))
	switch raw {
	case "", "expenses":
		return "expenses", nil
	case "savings":
		return "savings", nil
	}
	var ve core.ValidationError
	ve.Add("entity", `must be "expenses" or "savings"`)
	return "", ve.Err()
}
