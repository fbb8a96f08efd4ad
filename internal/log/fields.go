package log

// Common field names for structured logging
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
	FieldSessionID  = "session_id"
	FieldYear       = "year"
	FieldRowNum     = "row_num"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldAction     = "action"
	FieldBackend    = "backend"
	FieldRecords    = "records"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentSession = "session"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
	ComponentReport  = "report"
)

// Operations defines standard operation names
const (
	OpRead     = "read"
	OpWrite    = "write"
	OpDelete   = "delete"
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpSnapshot = "snapshot"
	OpAudit    = "audit"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
