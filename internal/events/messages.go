package events

import (
	"encoding/json"
	"time"
)

// Record event actions.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionBulkDelete = "bulk_deleted"
)

// Record entities.
const (
	EntityExpense = "expense"
	EntitySavings = "savings"
)

// RecordEvent is published after every successful write so downstream
// consumers (exports, audit) can react. It carries identifiers only; a
// consumer fetches the full record itself.
type RecordEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	RecordID  int64     `json:"recordId,omitempty"`
	RecordIDs []int64   `json:"recordIds,omitempty"`
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent builds a single-record event stamped with the current time.
func NewRecordEvent(entity, action string, recordID, userID int64) *RecordEvent {
	return &RecordEvent{
		Entity:    entity,
		Action:    action,
		RecordID:  recordID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// NewBulkDeleteEvent builds an event covering several records at once.
// RecordIDs echoes the IDs the caller asked to delete; IDs the owner did not
// actually hold may appear in the list, so consumers must treat it as a hint
// and re-check ownership rather than trust every entry was removed.
func NewBulkDeleteEvent(entity string, recordIDs []int64, userID int64) *RecordEvent {
	return &RecordEvent{
		Entity:    entity,
		Action:    ActionBulkDelete,
		RecordIDs: recordIDs,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event from JSON bytes.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
