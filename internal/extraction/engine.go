package extraction

import "context"

// Field type labels emitted by the extraction engines.
const (
	FieldTotal              = "TOTAL"
	FieldVendorName         = "VENDOR_NAME"
	FieldInvoiceReceiptDate = "INVOICE_RECEIPT_DATE"
	FieldItem               = "ITEM"
	FieldPrice              = "PRICE"
)

// Field is one detected key/value pair with the engine's confidence (0-100)
type Field struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// LineItem is one purchased item, described by its detected fields
type LineItem struct {
	Fields []Field `json:"fields"`
}

// LineItemGroup is a block of line items detected together on the document
type LineItemGroup struct {
	LineItems []LineItem `json:"line_items"`
}

// ExpenseDocument is the raw structured output for one expense document
type ExpenseDocument struct {
	SummaryFields  []Field         `json:"summary_fields"`
	LineItemGroups []LineItemGroup `json:"line_item_groups"`
}

// AnalyzeResponse is the engine's full response for one submitted document.
// A response with zero expense documents means the engine found no expense
// data; that is the caller's error to surface, not the engine's.
type AnalyzeResponse struct {
	ExpenseDocuments []ExpenseDocument `json:"expense_documents"`
}

// Engine defines the interface for structured expense extraction.
// Implementations must honor ctx cancellation on the outbound call and must
// not apply their own timeout; deadlines are the caller's responsibility.
type Engine interface {
	// AnalyzeExpense analyzes a receipt image/PDF and returns the raw
	// field-level extraction output
	AnalyzeExpense(ctx context.Context, imageData []byte, contentType string) (*AnalyzeResponse, error)
	// Close closes the engine and releases resources
	Close() error
}
