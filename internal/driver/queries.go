package driver

// Queries with a %s or %d verb are completed by the caller with validated
// labels, step bounds or compiled predicates. Values always travel as params.
const (
	RelatedNodesQuery = `
		MATCH p = (n)-[*1..%d]->(t)
		WHERE id(n) = $sourceId AND id(t) <> $sourceId%s
		RETURN DISTINCT t
		ORDER BY t.label ASC
	`

	PublicPathPredicate = ` AND all(x IN nodes(p) WHERE x.status = $status)`

	RelationsOfTypeQuery = `
		MATCH (n:%s)-[r]-(t:%s)
		WHERE id(n) = $sourceId%s
		OPTIONAL MATCH (rt:TaxonomyTerm) WHERE id(rt) = toInteger(r.role)
		RETURN t, r, rt.label AS roleLabel
		ORDER BY t.label ASC
	`

	EventIDsBySpatialQuery = `
		MATCH (s:Spatial)-[r]-(e:Event)
		%s
		RETURN DISTINCT id(e) AS id
	`

	EventIDsByTemporalQuery = `
		MATCH (t:Temporal)-[r]-(e:Event)
		%s
		RETURN DISTINCT id(e) AS id
	`

	EventTemporalsQuery = `
		MATCH (n:Event)-[r]-(t:Temporal)
		WHERE id(n) IN $ids
		RETURN id(n) AS sourceId, t AS node, r AS rel
		ORDER BY %s ASC
	`

	EventSpatialsQuery = `
		MATCH (n:Event)-[r]-(t:Spatial)
		WHERE id(n) IN $ids
		RETURN id(n) AS sourceId, t AS node, r AS rel
		ORDER BY t.label ASC
	`

	PersonResourcesQuery = `
		MATCH (n:Person)-[r]-(t:Resource)
		WHERE id(n) IN $ids
		RETURN id(n) AS sourceId, t AS node, r AS rel
		ORDER BY t.label ASC
	`

	PersonAffiliationsQuery = `
		MATCH (n:Person)-[r:hasAffiliation]->(t:Organisation)
		WHERE id(n) IN $ids
		OPTIONAL MATCH (rt:TaxonomyTerm) WHERE id(rt) = toInteger(r.role)
		RETURN id(n) AS sourceId, t AS node, r AS rel, rt.label AS roleLabel
		ORDER BY t.label ASC
	`

	TaxonomyTermsQuery = `
		MATCH (tx:Taxonomy) WHERE id(tx) = $taxonomyId
		MATCH (term:TaxonomyTerm)-[:isChildOf*1..]->(tx)
		MATCH (term)-[:isChildOf]->(parent)
		RETURN DISTINCT term, id(parent) AS parentId
	`

	PeopleCountQuery = `
		MATCH (n:Person)
		WHERE $status IS NULL OR n.status = $status
		RETURN count(n) AS total
	`

	PeopleNetworkQuery = `
		MATCH (n:Person)
		WHERE $status IS NULL OR n.status = $status
		OPTIONAL MATCH (n)-[r]-()
		WITH n, count(r) AS relationsCount
		RETURN n, relationsCount
		ORDER BY id(n) ASC
		SKIP $skip LIMIT $limit
	`
)

var IndexQueries = []string{
	"CREATE INDEX person_status IF NOT EXISTS FOR (n:Person) ON (n.status)",
	"CREATE INDEX person_last_name IF NOT EXISTS FOR (n:Person) ON (n.lastName)",
	"CREATE INDEX event_label IF NOT EXISTS FOR (n:Event) ON (n.label)",
	"CREATE INDEX organisation_label IF NOT EXISTS FOR (n:Organisation) ON (n.label)",
	"CREATE INDEX resource_label IF NOT EXISTS FOR (n:Resource) ON (n.label)",
	"CREATE INDEX spatial_label IF NOT EXISTS FOR (n:Spatial) ON (n.label)",
	"CREATE INDEX temporal_start_date IF NOT EXISTS FOR (n:Temporal) ON (n.startDate)",
	"CREATE INDEX taxonomy_system_type IF NOT EXISTS FOR (n:Taxonomy) ON (n.systemType)",
	"CREATE INDEX taxonomy_term_label_id IF NOT EXISTS FOR (n:TaxonomyTerm) ON (n.labelId)",
}
