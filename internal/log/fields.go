package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldOwnerID   = "owner_id"
	FieldExpenseID = "expense_id"
	FieldBudgetID  = "budget_id"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldPeriod    = "period"
	FieldMonth     = "month"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)
