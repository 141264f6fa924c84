package log

// Common field names for structured logging.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldUserID       = "user_id"
	FieldRecordID     = "record_id"
	FieldCategory     = "category"
	FieldSavingsType  = "savings_type"
	FieldAmount       = "amount"
	FieldCurrency     = "currency"
	FieldYear         = "year"
	FieldGroupBy      = "group_by"
	FieldDeletedCount = "deleted_count"
	FieldEntity       = "entity"
	FieldAction       = "action"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentRecords   = "records"
	ComponentAnalytics = "analytics"
	ComponentAuth      = "auth"
	ComponentEvents    = "events"
)

// Standard operation names.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpBulkDelete = "bulk_delete"
	OpList       = "list"
	OpSummary    = "summary"
	OpTrends     = "trends"
	OpOverview   = "overview"
	OpLogin      = "login"
	OpRegister   = "register"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
