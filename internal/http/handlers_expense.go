package http

import (
	"net/http"
	"time"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/services"
)

// createExpenseRequest lists the client-writable fields of an expense.
// Identity, ownership and timestamps are always server-assigned.
type createExpenseRequest struct {
	Amount             float64            `json:"amount"`
	Currency           core.Currency      `json:"currency"`
	Category           core.Category      `json:"category"`
	Subcategory        string             `json:"subcategory"`
	Description        string             `json:"description"`
	Location           string             `json:"location"`
	Notes              string             `json:"notes"`
	Date               *time.Time         `json:"date"`
	PaymentMethod      core.PaymentMethod `json:"paymentMethod"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurringFrequency core.Frequency     `json:"recurringFrequency"`
	Tags               []string           `json:"tags"`
	Receipt            *core.Receipt      `json:"receipt"`
}

func (req *createExpenseRequest) record(userID int64) *core.ExpenseRecord {
	e := &core.ExpenseRecord{
		UserID:             userID,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Category:           req.Category,
		Subcategory:        req.Subcategory,
		Description:        req.Description,
		Location:           req.Location,
		Notes:              req.Notes,
		PaymentMethod:      req.PaymentMethod,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
		Tags:               req.Tags,
		Receipt:            req.Receipt,
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	return e
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	created, err := s.records.CreateExpense(r.Context(), req.record(userID))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	e, err := s.records.GetExpense(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	f, opts, err := parseExpenseQuery(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	items, pagination, err := s.records.ListExpenses(r.Context(), userID, f, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.ExpenseRecord{}
	}
	respondList(w, items, pagination)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	var patch services.ExpensePatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	updated, err := s.records.UpdateExpense(r.Context(), userID, id, patch)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if err := s.records.DeleteExpense(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondMessage(w, http.StatusOK, "expense deleted")
}

type bulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (s *Server) handleBulkDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	ids, err := parseBulkDelete(r)
	if err != nil {
		if err == errBadBody {
			respondError(w, http.StatusBadRequest, "malformed request body", nil)
			return
		}
		s.respondServiceError(w, r, err)
		return
	}

	deleted, err := s.records.BulkDeleteExpenses(r.Context(), userID, ids)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusOK, bulkDeleteResponse{DeletedCount: deleted})
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "expenses-summary", func() (any, error) {
		f, _, err := parseExpenseQuery(r)
		if err != nil {
			return nil, err
		}
		sum, err := s.analytics.ExpenseSummary(r.Context(), userID, f)
		if err != nil {
			return nil, err
		}
		return newSummaryPayload(sum), nil
	})
}
