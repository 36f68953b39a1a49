package model

import "time"

type GraphStats struct {
	Nodes         int           `json:"nodes"`
	Edges         int           `json:"edges"`
	IsolatedItems int           `json:"isolated_items"`
	TotalWeight   int           `json:"total_weight"`
	Density       float64       `json:"density"`
	TopItems      []Association `json:"top_items"` // Weight holds the degree
}

type SnapshotInfo struct {
	ID           string     `json:"id"`
	BuiltAt      time.Time  `json:"built_at"`
	Transactions int        `json:"transactions"`
	Stats        GraphStats `json:"stats"`
}
