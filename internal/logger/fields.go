package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRunID identifies one pipeline run (batch or watch-triggered).
	FieldRunID = "run_id"

	// FieldStage is the pipeline stage name (generate, refine, inspect, analyze).
	FieldStage = "stage"

	// FieldAsset is the asset filename currently being processed.
	FieldAsset = "asset"
)

// Standard metric fields, attached at the log site.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldScore is a quality inspection score.
	FieldScore = "score"

	// FieldCount is a generic count field.
	FieldCount = "count"
)
