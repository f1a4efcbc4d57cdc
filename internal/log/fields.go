package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldAmountCents = "amount_cents"
	FieldProposalID  = "proposal_id"
	FieldGoalName    = "goal_name"
	FieldCardName    = "card_name"
	FieldWeekCount   = "week_count"
	FieldHorizonDays = "horizon_days"
	FieldRefDate     = "reference_date"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentForecast   = "forecast"
	ComponentAllocation = "allocation"
	ComponentCycle      = "cycle"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpBuild    = "build"
	OpAllocate = "allocate"
	OpConfirm  = "confirm"
	OpDiscard  = "discard"
	OpCommit   = "commit"
	OpReset    = "reset"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
