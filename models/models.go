package models

import "github.com/shopspring/decimal"

func init() {
	// money is rendered as a JSON number, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Product{},
		&FileAttachment{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&OrderDesign{},
		&Job{},
	}
}
