package domain

import "strings"

// Attribute names exposed by an add-on selector's container element.
const (
	AttrProductID = "data-addon-product-id"
	AttrVariantID = "data-addon-variant-id"
	AttrPrice     = "data-addon-price"
)

// Selection is one add-on chosen by the shopper, read from a checked
// selector's container attributes. Price is the string-encoded decimal the
// storefront exposes; it is carried through untouched.
type Selection struct {
	ProductID string
	VariantID string
	Price     string
}

// ParseSelection builds a Selection from one container attribute map. The
// second return value is false when product or variant identifiers are
// missing; such entries are dropped silently, never reported.
func ParseSelection(attrs map[string]string) (Selection, bool) {
	productID := strings.TrimSpace(attrs[AttrProductID])
	variantID := strings.TrimSpace(attrs[AttrVariantID])
	if productID == "" || variantID == "" {
		return Selection{}, false
	}
	return Selection{
		ProductID: productID,
		VariantID: variantID,
		Price:     strings.TrimSpace(attrs[AttrPrice]),
	}, true
}

// ParseSelections parses every attribute map in order, skipping malformed
// entries.
func ParseSelections(attrMaps []map[string]string) []Selection {
	var selections []Selection
	for _, attrs := range attrMaps {
		if selection, ok := ParseSelection(attrs); ok {
			selections = append(selections, selection)
		}
	}
	return selections
}
