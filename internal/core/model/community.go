package model

type Community struct {
	ID             int      `json:"id"`
	Items          []string `json:"items"`
	InternalWeight int      `json:"internal_weight"` // Sum of edge weights inside the community
}
