package expense

import "strings"

// categoryRule maps merchant-name keywords to a category. Rules are
// evaluated in table order and the first keyword hit wins, so a merchant
// matching several rules takes the earliest one.
type categoryRule struct {
	keywords []string
	category Category
}

var categoryRules = []categoryRule{
	{[]string{"uber", "lyft", "taxi"}, CategoryTransportation},
	{[]string{"restaurant", "cafe", "food", "pizza", "burger", "starbucks"}, CategoryFoodDining},
	{[]string{"hotel", "airbnb", "booking"}, CategoryTravelLodging},
	{[]string{"office", "supplies", "staples"}, CategoryOfficeSupplies},
	{[]string{"gas", "fuel", "shell", "exxon", "bp"}, CategoryFuel},
}

// Above this total, an otherwise uncategorized expense counts as a major
// purchase
const majorPurchaseThreshold = 500

// Categorize picks a category from the merchant name and total amount.
// Matching is plain substring containment on the lower-cased merchant; the
// amount threshold only applies when no keyword rule matched.
func Categorize(merchant string, total float64) Category {
	m := strings.ToLower(merchant)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(m, keyword) {
				return rule.category
			}
		}
	}
	if total > majorPurchaseThreshold {
		return CategoryMajorPurchase
	}
	return CategoryGeneral
}
