package http

import (
	"net/http"
	"time"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

func (s *Server) handleExpensePie(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "expenses-pie", func() (any, error) {
		f, _, err := parseExpenseQuery(r)
		if err != nil {
			return nil, err
		}
		sum, err := s.analytics.ExpenseSummary(r.Context(), userID, f)
		if err != nil {
			return nil, err
		}
		return newPiePayload(sum), nil
	})
}

func (s *Server) handleSavingsPie(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "savings-pie", func() (any, error) {
		f, _, err := parseSavingsQuery(r)
		if err != nil {
			return nil, err
		}
		sum, err := s.analytics.SavingsSummary(r.Context(), userID, f)
		if err != nil {
			return nil, err
		}
		return newPiePayload(sum), nil
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "trends", func() (any, error) {
		entity, err := trendEntity(r)
		if err != nil {
			return nil, err
		}

		p := newQueryParser(r)
		groupBy := p.groupBy("groupBy")
		if err := p.err(); err != nil {
			return nil, err
		}

		if entity == "savings" {
			f, _, err := parseSavingsQuery(r)
			if err != nil {
				return nil, err
			}
			return s.analytics.SavingsTrend(r.Context(), userID, f, groupBy)
		}
		f, _, err := parseExpenseQuery(r)
		if err != nil {
			return nil, err
		}
		return s.analytics.ExpenseTrend(r.Context(), userID, f, groupBy)
	})
}

func (s *Server) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "trends-monthly", func() (any, error) {
		p := newQueryParser(r)
		year := p.year("year", time.Now().UTC().Year())
		if err := p.err(); err != nil {
			return nil, err
		}
		trends, err := s.analytics.MonthlyTrends(r.Context(), userID, year)
		if err != nil {
			return nil, err
		}
		return newMonthlyTrendsPayload(trends), nil
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "overview", func() (any, error) {
		// only the criteria shared by both record kinds apply here
		p := newQueryParser(r)
		start := p.date("startDate")
		end := p.endDate("endDate")
		minAmount := p.amount("minAmount")
		maxAmount := p.amount("maxAmount")
		currency := p.currency("currency")
		if err := p.err(); err != nil {
			return nil, err
		}

		ef := core.ExpenseFilter{StartDate: start, EndDate: end, MinAmount: minAmount, MaxAmount: maxAmount, Currency: currency}
		sf := core.SavingsFilter{StartDate: start, EndDate: end, MinAmount: minAmount, MaxAmount: maxAmount, Currency: currency}

		ov, err := s.analytics.Overview(r.Context(), userID, ef, sf)
		if err != nil {
			return nil, err
		}
		return newOverviewPayload(ov), nil
	})
}
