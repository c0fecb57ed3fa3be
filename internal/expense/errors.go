package expense

// Kind classifies a pipeline failure
type Kind string

const (
	// KindInvalidEvent means the inbound event was missing required
	// structure. Fatal to the invocation; surfaced as a 500-class response.
	KindInvalidEvent Kind = "invalid_event"
	// KindUnsupportedFormat means the object key's extension is not in the
	// allow-list. Detected before the engine is ever called.
	KindUnsupportedFormat Kind = "unsupported_format"
	// KindEngineError means the extraction engine call (or the object fetch
	// feeding it) failed. Not retried here.
	KindEngineError Kind = "engine_error"
	// KindNoExpenseData means the engine responded but found zero expense
	// documents. A normal, non-exceptional failure outcome.
	KindNoExpenseData Kind = "no_expense_data"
)

// PipelineError is a classified extraction failure. Message is safe to
// return to callers; Details carries an optional diagnostic trace.
type PipelineError struct {
	Kind    Kind
	Message string
	Details string
}

func (e *PipelineError) Error() string {
	return e.Message
}
