package model

// Transaction is one purchase event: the raw item strings as they were read.
// It may hold duplicates and blank entries until it is normalized.
type Transaction []string

// Bundle is an item pair with its co-occurrence frequency.
type Bundle struct {
	First     string `json:"first"`
	Second    string `json:"second"`
	Frequency int    `json:"frequency"`
}

// Association is an item ranked relative to some target item.
type Association struct {
	Item   string `json:"item"`
	Weight int    `json:"weight"`
}
