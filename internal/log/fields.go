package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldBatchID     = "batch_id"
	FieldRowCount    = "row_count"
	FieldDropped     = "dropped"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldSource      = "source"
	FieldModelPath   = "model_path"
	FieldAccuracy    = "accuracy"
	FieldDBPath      = "db_path"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentIngest   = "ingest"
	ComponentClassify = "classify"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentBackend  = "backend"
	ComponentLedger   = "ledger"
)

// Operations defines standard operation names
const (
	OpImport     = "import"
	OpNormalize  = "normalize"
	OpTrain      = "train"
	OpPredict    = "predict"
	OpCategorize = "categorize"
	OpEvaluate   = "evaluate"
	OpReport     = "report"
	OpValidate   = "validate"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
