package models

import "strings"

type ProductType string

const (
	TypeFood       ProductType = "Oziq-ovqat"
	TypeTechnology ProductType = "Texnologiya"
	TypeClothing   ProductType = "Kiyim"
	TypeHealth     ProductType = "Salomatlik"
	TypeHome       ProductType = "Uy-ro'zg'or"
	TypeBeauty     ProductType = "Go'zallik"
	TypeSports     ProductType = "Sport"
	TypeBooks      ProductType = "Kitoblar"
	TypeToys       ProductType = "O'yinchoqlar"
	TypeTransport  ProductType = "Transport"
	TypeOther      ProductType = "Boshqa"
)

// ProductTypes lists the selectable types in display order, Other last.
var ProductTypes = []ProductType{
	TypeFood,
	TypeTechnology,
	TypeClothing,
	TypeHealth,
	TypeHome,
	TypeBeauty,
	TypeSports,
	TypeBooks,
	TypeToys,
	TypeTransport,
	TypeOther,
}

var englishTypeNames = map[ProductType]string{
	TypeFood:       "Food",
	TypeTechnology: "Technology",
	TypeClothing:   "Clothing",
	TypeHealth:     "Health",
	TypeHome:       "Home",
	TypeBeauty:     "Beauty",
	TypeSports:     "Sports",
	TypeBooks:      "Books",
	TypeToys:       "Toys",
	TypeTransport:  "Transport",
	TypeOther:      "Other",
}

// English returns the English label used by the admin UI.
func (t ProductType) English() string {
	return englishTypeNames[t]
}

func (t ProductType) Valid() bool {
	_, ok := englishTypeNames[t]
	return ok
}

// ParseProductType accepts either the stored Uzbek label or its English
// name, case-insensitively. An empty value yields ("", true).
func ParseProductType(value string) (ProductType, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", true
	}
	for _, t := range ProductTypes {
		if strings.EqualFold(trimmed, string(t)) || strings.EqualFold(trimmed, t.English()) {
			return t, true
		}
	}
	return "", false
}
