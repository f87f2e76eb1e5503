package log

// Field names shared by every log line.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldEntity        = "entity"
	FieldID            = "id"
	FieldMonth         = "month"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldEventID       = "event_id"
	FieldEventKind     = "event_kind"
	FieldCount         = "count"
)

const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentCategory    = "category"
	ComponentBudget      = "budget"
	ComponentGoal        = "goal"
	ComponentReport      = "report"
	ComponentExport      = "export"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
)

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRefresh = "refresh"
	OpFund    = "fund"
	OpPublish = "publish"
	OpMirror  = "mirror"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord identifies the entity and id a log line is about.
func (f LogFields) WithRecord(entity string, id int64) LogFields {
	f[FieldEntity] = entity
	f[FieldID] = id
	return f
}

// WithAmount adds money-related fields; an empty category is omitted.
func (f LogFields) WithAmount(amountCents int64, category string) LogFields {
	f[FieldAmountCents] = amountCents
	if category != "" {
		f[FieldCategory] = category
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
