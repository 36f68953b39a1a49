package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Item(name);",
	"CREATE INDEX ON :Item(snapshot_id);",
}

const (
	// Rows: {name, degree}
	MergeItemsQuery = `
		UNWIND $rows AS row
		MERGE (n:Item {name: row.name})
		SET n.snapshot_id = $snapshot_id,
			n.degree = row.degree,
			n.exported_at = $exported_at
	`

	// Rows: {first, second, weight}
	MergeCoPurchasedQuery = `
		UNWIND $rows AS row
		MATCH (a:Item {name: row.first})
		MATCH (b:Item {name: row.second})
		MERGE (a)-[e:CO_PURCHASED]->(b)
		SET e.weight = row.weight,
			e.snapshot_id = $snapshot_id
	`

	// Removes what an earlier export left behind.
	DeleteStaleItemsQuery = `
		MATCH (n:Item)
		WHERE n.snapshot_id <> $snapshot_id
		DETACH DELETE n
	`

	DeleteStaleEdgesQuery = `
		MATCH (:Item)-[e:CO_PURCHASED]->(:Item)
		WHERE e.snapshot_id <> $snapshot_id
		DELETE e
	`

	CountExportedQuery = `
		MATCH (n:Item {snapshot_id: $snapshot_id})
		OPTIONAL MATCH (n)-[e:CO_PURCHASED]->()
		RETURN count(DISTINCT n) AS items, count(e) AS edges
	`
)
