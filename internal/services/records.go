package services

import (
	"context"
	"time"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/events"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
)

// RecordStore is the persistence surface the record service depends on.
type RecordStore interface {
	CreateExpense(ctx context.Context, e *core.ExpenseRecord) error
	GetExpense(ctx context.Context, userID, id int64) (*core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, userID int64, f core.ExpenseFilter, opts core.ListOptions) ([]core.ExpenseRecord, int64, error)
	UpdateExpense(ctx context.Context, e *core.ExpenseRecord) error
	DeleteExpense(ctx context.Context, userID, id int64) error
	BulkDeleteExpenses(ctx context.Context, userID int64, ids []int64) (int64, error)

	CreateSavings(ctx context.Context, s *core.SavingsRecord) error
	GetSavings(ctx context.Context, userID, id int64) (*core.SavingsRecord, error)
	ListSavings(ctx context.Context, userID int64, f core.SavingsFilter, opts core.ListOptions) ([]core.SavingsRecord, int64, error)
	UpdateSavings(ctx context.Context, s *core.SavingsRecord) error
	DeleteSavings(ctx context.Context, userID, id int64) error
	BulkDeleteSavings(ctx context.Context, userID int64, ids []int64) (int64, error)
}

// EventPublisher emits record change events. A nil implementation is allowed.
type EventPublisher interface {
	Publish(ctx context.Context, ev *events.RecordEvent) error
}

// RecordService owns the write path for expense and savings records:
// validation, defaulting, persistence and change notification.
type RecordService struct {
	store  RecordStore
	events EventPublisher
	logger *log.Logger
	now    func() time.Time
}

func NewRecordService(store RecordStore, publisher EventPublisher, logger *log.Logger) *RecordService {
	return &RecordService{
		store:  store,
		events: publisher,
		logger: logger.WithComponent(log.ComponentRecords),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ExpensePatch carries the updatable fields of an expense record. Nil
// fields are left unchanged.
type ExpensePatch struct {
	Amount             *float64            `json:"amount"`
	Currency           *core.Currency      `json:"currency"`
	Category           *core.Category      `json:"category"`
	Subcategory        *string             `json:"subcategory"`
	Description        *string             `json:"description"`
	Location           *string             `json:"location"`
	Notes              *string             `json:"notes"`
	Date               *time.Time          `json:"date"`
	PaymentMethod      *core.PaymentMethod `json:"paymentMethod"`
	IsRecurring        *bool               `json:"isRecurring"`
	RecurringFrequency *core.Frequency     `json:"recurringFrequency"`
	Tags               *[]string           `json:"tags"`
	Receipt            *core.Receipt       `json:"receipt"`
}

// SavingsPatch carries the updatable fields of a savings record. Nil
// fields are left unchanged. Setting Goal replaces the goal wholesale;
// ClearGoal removes it.
type SavingsPatch struct {
	Amount             *float64            `json:"amount"`
	Currency           *core.Currency      `json:"currency"`
	Type               *core.SavingsType   `json:"type"`
	Category           *core.SavingsCat    `json:"category"`
	Date               *time.Time          `json:"date"`
	Period             *core.Period        `json:"period"`
	Goal               *core.Goal          `json:"goal"`
	ClearGoal          bool                `json:"clearGoal"`
	Source             *core.SavingsSource `json:"source"`
	IsRecurring        *bool               `json:"isRecurring"`
	RecurringAmount    *float64            `json:"recurringAmount"`
	RecurringFrequency *core.Frequency     `json:"recurringFrequency"`
	Notes              *string             `json:"notes"`
	Tags               *[]string           `json:"tags"`
	IsActive           *bool               `json:"isActive"`
}

func (s *RecordService) CreateExpense(ctx context.Context, e *core.ExpenseRecord) (*core.ExpenseRecord, error) {
	e.Normalize(s.now())
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntityExpense, events.ActionCreated, e.ID, e.UserID))
	return e, nil
}

func (s *RecordService) GetExpense(ctx context.Context, userID, id int64) (*core.ExpenseRecord, error) {
	return s.store.GetExpense(ctx, userID, id)
}

func (s *RecordService) ListExpenses(ctx context.Context, userID int64, f core.ExpenseFilter, opts core.ListOptions) ([]core.ExpenseRecord, *core.Pagination, error) {
	items, total, err := s.store.ListExpenses(ctx, userID, f, opts)
	if err != nil {
		return nil, nil, err
	}
	p := core.NewPagination(opts.Page, opts.Limit, int(total))
	return items, &p, nil
}

func (s *RecordService) UpdateExpense(ctx context.Context, userID, id int64, patch ExpensePatch) (*core.ExpenseRecord, error) {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyExpensePatch(e, patch)
	e.Normalize(s.now())
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntityExpense, events.ActionUpdated, id, userID))
	return e, nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntityExpense, events.ActionDeleted, id, userID))
	return nil
}

func (s *RecordService) BulkDeleteExpenses(ctx context.Context, userID int64, ids []int64) (int64, error) {
	deleted, err := s.store.BulkDeleteExpenses(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.publish(ctx, events.NewBulkDeleteEvent(events.EntityExpense, ids, userID))
	}
	return deleted, nil
}

func (s *RecordService) CreateSavings(ctx context.Context, rec *core.SavingsRecord) (*core.SavingsRecord, error) {
	rec.Normalize(s.now())
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateSavings(ctx, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntitySavings, events.ActionCreated, rec.ID, rec.UserID))
	return rec, nil
}

func (s *RecordService) GetSavings(ctx context.Context, userID, id int64) (*core.SavingsRecord, error) {
	return s.store.GetSavings(ctx, userID, id)
}

func (s *RecordService) ListSavings(ctx context.Context, userID int64, f core.SavingsFilter, opts core.ListOptions) ([]core.SavingsRecord, *core.Pagination, error) {
	items, total, err := s.store.ListSavings(ctx, userID, f, opts)
	if err != nil {
		return nil, nil, err
	}
	p := core.NewPagination(opts.Page, opts.Limit, int(total))
	return items, &p, nil
}

func (s *RecordService) UpdateSavings(ctx context.Context, userID, id int64, patch SavingsPatch) (*core.SavingsRecord, error) {
	rec, err := s.store.GetSavings(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applySavingsPatch(rec, patch)
	rec.Normalize(s.now())
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSavings(ctx, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntitySavings, events.ActionUpdated, id, userID))
	return rec, nil
}

func (s *RecordService) DeleteSavings(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteSavings(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewRecordEvent(events.EntitySavings, events.ActionDeleted, id, userID))
	return nil
}

func (s *RecordService) BulkDeleteSavings(ctx context.Context, userID int64, ids []int64) (int64, error) {
	deleted, err := s.store.BulkDeleteSavings(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.publish(ctx, events.NewBulkDeleteEvent(events.EntitySavings, ids, userID))
	}
	return deleted, nil
}

// GoalStatus is the computed state of a savings goal at a point in time.
type GoalStatus struct {
	TargetAmount    float64    `json:"targetAmount"`
	TargetDate      *time.Time `json:"targetDate,omitempty"`
	Progress        float64    `json:"progress"`
	RemainingAmount float64    `json:"remainingAmount"`
	IsCompleted     bool       `json:"isCompleted"`
	IsOnTrack       bool       `json:"isOnTrack"`
}

// SavingsGoalStatus derives the goal metrics for a record, or nil when
// the record has no goal attached.
func (s *RecordService) SavingsGoalStatus(rec *core.SavingsRecord) *GoalStatus {
	if rec.Goal == nil {
		return nil
	}
	g := rec.Goal
	return &GoalStatus{
		TargetAmount:    g.TargetAmount,
		TargetDate:      g.TargetDate,
		Progress:        g.Progress,
		RemainingAmount: core.RemainingAmount(rec.Amount, g.TargetAmount),
		IsCompleted:     g.IsCompleted,
		IsOnTrack:       core.IsOnTrack(rec.Amount, g.TargetAmount, rec.Period.StartDate, g.TargetDate, s.now()),
	}
}

// publish sends a change event without failing the write that caused it.
func (s *RecordService) publish(ctx context.Context, ev *events.RecordEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed",
			log.FieldError, err,
			log.FieldEntity, ev.Entity,
			log.FieldAction, ev.Action,
		)
	}
}

func applyExpensePatch(e *core.ExpenseRecord, p ExpensePatch) {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Subcategory != nil {
		e.Subcategory = *p.Subcategory
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	if p.IsRecurring != nil {
		e.IsRecurring = *p.IsRecurring
	}
	if p.RecurringFrequency != nil {
		e.RecurringFrequency = *p.RecurringFrequency
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	if p.Receipt != nil {
		e.Receipt = p.Receipt
	}
}

func applySavingsPatch(rec *core.SavingsRecord, p SavingsPatch) {
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.Currency != nil {
		rec.Currency = *p.Currency
	}
	if p.Type != nil {
		rec.Type = *p.Type
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Date != nil {
		rec.Date = *p.Date
	}
	if p.Period != nil {
		rec.Period = *p.Period
	}
	if p.ClearGoal {
		rec.Goal = nil
	} else if p.Goal != nil {
		rec.Goal = p.Goal
	}
	if p.Source != nil {
		rec.Source = *p.Source
	}
	if p.IsRecurring != nil {
		rec.IsRecurring = *p.IsRecurring
	}
	if p.RecurringAmount != nil {
		rec.RecurringAmount = *p.RecurringAmount
	}
	if p.RecurringFrequency != nil {
		rec.RecurringFrequency = *p.RecurringFrequency
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.Tags != nil {
		rec.Tags = *p.Tags
	}
	if p.IsActive != nil {
		rec.IsActive = *p.IsActive
	}
}
