package http

import (
	"net/http"
	"time"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/services"
)

// createSavingsRequest lists the client-writable fields of a savings record.
type createSavingsRequest struct {
	Amount             float64            `json:"amount"`
	Currency           core.Currency      `json:"currency"`
	Type               core.SavingsType   `json:"type"`
	Category           core.SavingsCat    `json:"category"`
	Date               *time.Time         `json:"date"`
	Period             core.Period        `json:"period"`
	Goal               *core.Goal         `json:"goal"`
	Source             core.SavingsSource `json:"source"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurringAmount    float64            `json:"recurringAmount"`
	RecurringFrequency core.Frequency     `json:"recurringFrequency"`
	Tags               []string           `json:"tags"`
	Notes              string             `json:"notes"`
	IsActive           *bool              `json:"isActive"`
}

func (req *createSavingsRequest) record(userID int64) *core.SavingsRecord {
	rec := &core.SavingsRecord{
		UserID:             userID,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Type:               req.Type,
		Category:           req.Category,
		Period:             req.Period,
		Goal:               req.Goal,
		Source:             req.Source,
		IsRecurring:        req.IsRecurring,
		RecurringAmount:    req.RecurringAmount,
		RecurringFrequency: req.RecurringFrequency,
		Tags:               req.Tags,
		Notes:              req.Notes,
		IsActive:           true,
	}
	if req.Date != nil {
		rec.Date = *req.Date
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	return rec
}

// savingsResponse decorates a record with its derived goal metrics.
type savingsResponse struct {
	*core.SavingsRecord
	GoalStatus *services.GoalStatus `json:"goalStatus,omitempty"`
}

func (s *Server) savingsPayload(rec *core.SavingsRecord) savingsResponse {
	return savingsResponse{
		SavingsRecord: rec,
		GoalStatus:    s.records.SavingsGoalStatus(rec),
	}
}

func (s *Server) handleCreateSavings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createSavingsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	created, err := s.records.CreateSavings(r.Context(), req.record(userID))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusCreated, s.savingsPayload(created))
}

func (s *Server) handleGetSavings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	rec, err := s.records.GetSavings(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, s.savingsPayload(rec))
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	f, opts, err := parseSavingsQuery(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	items, pagination, err := s.records.ListSavings(r.Context(), userID, f, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	payload := make([]savingsResponse, 0, len(items))
	for i := range items {
		payload = append(payload, s.savingsPayload(&items[i]))
	}
	respondList(w, payload, pagination)
}

func (s *Server) handleUpdateSavings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	var patch services.SavingsPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	updated, err := s.records.UpdateSavings(r.Context(), userID, id, patch)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusOK, s.savingsPayload(updated))
}

func (s *Server) handleDeleteSavings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if err := s.records.DeleteSavings(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondMessage(w, http.StatusOK, "savings record deleted")
}

func (s *Server) handleBulkDeleteSavings(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := s.records.BulkDeleteSavings(r.Context(), userID, ids)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.analyticsCache.InvalidateUser(userID)
	respondData(w, http.StatusOK, bulkDeleteResponse{DeletedCount: deleted})
}

func (s *Server) handleSavingsSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	s.respondCached(w, r, userID, "savings-summary", func() (any, error) {
		f, _, err := parseSavingsQuery(r)
		if err != nil {
			return nil, err
		}
		sum, err := s.analytics.SavingsSummary(r.Context(), userID, f)
		if err != nil {
			return nil, err
		}
		return newSummaryPayload(sum), nil
	})
}
