package expense

import (
	"math"
	"regexp"
	"strconv"

	"github.com/receipted/receipted/internal/extraction"
)

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

// parseAmount strips everything that is not a digit or '.' and parses the
// rest as a decimal. Unparseable or empty text degrades to 0 rather than
// failing the extraction.
func parseAmount(text string) float64 {
	cleaned := nonAmountChars.ReplaceAllString(text, "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// aggregateConfidence averages the summary-field confidences, rounded to the
// nearest integer. Line-item confidences are deliberately excluded; the
// score is a coarse document-level signal, not a weighted one.
func aggregateConfidence(fields []extraction.Field) int {
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, field := range fields {
		sum += field.Confidence
	}
	return int(math.Round(sum / float64(len(fields))))
}

// Normalize converts the engine's raw field output for one expense document
// into a canonical Record. It is a pure function: no I/O, no clock, and
// identical input always yields identical output.
//
// When the same field type appears more than once, the last occurrence in
// detection order wins.
func Normalize(doc *extraction.ExpenseDocument) Record {
	rec := Record{Items: []LineItem{}}

	for _, field := range doc.SummaryFields {
		switch field.Type {
		case extraction.FieldTotal:
			rec.Total = parseAmount(field.Text)
		case extraction.FieldVendorName:
			rec.Merchant = field.Text
		case extraction.FieldInvoiceReceiptDate:
			// Kept verbatim; no reformatting or validation
			rec.Date = field.Text
		}
	}

	for _, group := range doc.LineItemGroups {
		for _, item := range group.LineItems {
			var name string
			var price float64
			for _, field := range item.Fields {
				switch field.Type {
				case extraction.FieldItem:
					name = field.Text
				case extraction.FieldPrice:
					price = parseAmount(field.Text)
				}
			}
			// An item with a price but no name is dropped outright
			if name != "" {
				rec.Items = append(rec.Items, LineItem{Name: name, Price: price})
			}
		}
	}

	rec.Category = Categorize(rec.Merchant, rec.Total)
	rec.Confidence = aggregateConfidence(doc.SummaryFields)

	return rec
}
