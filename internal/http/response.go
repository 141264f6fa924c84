package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/cache"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/services"
)

// envelope is the top-level success response shape.
type envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Pagination *core.Pagination `json:"pagination,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// errorEnvelope is the top-level failure response shape.
type errorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data any, p *core.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: p})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg})
}

func respondError(w http.ResponseWriter, status int, msg string, fields []core.FieldError) {
	writeJSON(w, status, errorEnvelope{Success: false, Message: msg, Errors: fields})
}

// respondServiceError maps domain errors onto HTTP statuses. Store failures
// stay generic so internals never leak to the caller.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, "validation failed", ve.Fields)
	case errors.Is(err, core.ErrNotFound):
		respondError(w, http.StatusNotFound, "record not found", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password", nil)
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, auth.ErrNoSession):
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
	default:
		s.logger.Error("request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
		)
		respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// respondCached serves an analytics view from the per-user cache, loading
// and storing it on a miss. Errors are never cached.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, userID int64, view string, load func() (any, error)) {
	key := cache.Key(userID, view, r.URL.RawQuery)
	if v, ok := s.analyticsCache.Get(key); ok {
		respondData(w, http.StatusOK, v)
		return
	}
	v, err := load()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.Set(key, v)
	respondData(w, http.StatusOK, v)
}

// summaryPayload is the grouped-summary output shape.
type summaryPayload struct {
	Summary []services.SummaryRow `json:"summary"`
	Total   float64               `json:"total"`
	Count   int                   `json:"count"`
	Period  services.PeriodEcho   `json:"period"`
}

func newSummaryPayload(s *services.Summary) summaryPayload {
	return summaryPayload{
		Summary: s.Rows,
		Total:   s.GrandTotal,
		Count:   s.TotalCount,
		Period:  s.Period,
	}
}

// pieSlice renames the summary-row fields for chart consumers.
type pieSlice struct {
	Key        string  `json:"key"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type piePayload struct {
	PieChartData []pieSlice          `json:"pieChartData"`
	TotalAmount  float64             `json:"totalAmount"`
	TotalCount   int                 `json:"totalCount"`
	Period       services.PeriodEcho `json:"period"`
}

func newPiePayload(s *services.Summary) piePayload {
	slices := make([]pieSlice, 0, len(s.Rows))
	for _, row := range s.Rows {
		slices = append(slices, pieSlice{
			Key:        row.Key,
			Amount:     row.Total,
			Count:      row.Count,
			Average:    row.Average,
			Percentage: row.Percentage,
			Color:      row.Color,
		})
	}
	return piePayload{
		PieChartData: slices,
		TotalAmount:  s.GrandTotal,
		TotalCount:   s.TotalCount,
		Period:       s.Period,
	}
}

// overviewPayload nests the position metrics beside the top groups.
type overviewPayload struct {
	Overview             overviewMetrics       `json:"overview"`
	TopExpenseCategories []services.SummaryRow `json:"topExpenseCategories"`
	TopSavingsTypes      []services.SummaryRow `json:"topSavingsTypes"`
	Period               services.PeriodEcho   `json:"period"`
}

type overviewMetrics struct {
	TotalExpenses float64 `json:"totalExpenses"`
	TotalSavings  float64 `json:"totalSavings"`
	NetWorth      float64 `json:"netWorth"`
	SavingsRate   float64 `json:"savingsRate"`
}

func newOverviewPayload(o *services.Overview) overviewPayload {
	return overviewPayload{
		Overview: overviewMetrics{
			TotalExpenses: o.TotalExpenses,
			TotalSavings:  o.TotalSavings,
			NetWorth:      o.NetWorth,
			SavingsRate:   o.SavingsRate,
		},
		TopExpenseCategories: o.TopExpenseCategories,
		TopSavingsTypes:      o.TopSavingsTypes,
		Period:               o.Period,
	}
}

// monthlyTrendsPayload is the fixed twelve-month comparison shape.
type monthlyTrendsPayload struct {
	Year                   int                 `json:"year"`
	MonthlyData            []services.MonthRow `json:"monthlyData"`
	TotalExpenses          float64             `json:"totalExpenses"`
	TotalSavings           float64             `json:"totalSavings"`
	NetSavings             float64             `json:"netSavings"`
	AverageMonthlyExpenses float64             `json:"averageMonthlyExpenses"`
	AverageMonthlySavings  float64             `json:"averageMonthlySavings"`
}

func newMonthlyTrendsPayload(t *services.MonthlyTrends) monthlyTrendsPayload {
	return monthlyTrendsPayload{
		Year:                   t.Year,
		MonthlyData:            t.Months,
		TotalExpenses:          t.TotalExpenses,
		TotalSavings:           t.TotalSavings,
		NetSavings:             t.NetSavings,
		AverageMonthlyExpenses: t.AverageMonthlyExpenses,
		AverageMonthlySavings:  t.AverageMonthlySavings,
	}
}
