package expense

// Category is one of the closed set of expense category labels
type Category string

const (
	CategoryTransportation Category = "Transportation"
	CategoryFoodDining     Category = "Food & Dining"
	CategoryTravelLodging  Category = "Travel & Lodging"
	CategoryOfficeSupplies Category = "Office Supplies"
	CategoryFuel           Category = "Fuel"
	CategoryMajorPurchase  Category = "Major Purchase"
	CategoryGeneral        Category = "General"
)

// LineItem is one purchased item from the receipt
type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Record is the canonical expense record produced by one extraction.
// Undetected values stay at their zero value (never null); Date keeps
// whatever textual form the engine returned. Records are built once per
// extraction and never mutated afterwards.
type Record struct {
	Merchant   string     `json:"merchant"`
	Total      float64    `json:"total"`
	Date       string     `json:"date"`
	Category   Category   `json:"category"`
	Items      []LineItem `json:"items"`
	Confidence int        `json:"confidence"` // 0-100 aggregate over summary fields
}
