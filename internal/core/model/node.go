package model

import "fmt"

const (
	LabelPerson       = "Person"
	LabelEvent        = "Event"
	LabelOrganisation = "Organisation"
	LabelResource     = "Resource"
	LabelSpatial      = "Spatial"
	LabelTemporal     = "Temporal"
	LabelTaxonomy     = "Taxonomy"
	LabelTaxonomyTerm = "TaxonomyTerm"

	StatusPublic = "public"
)

// EntityTypes are the labels a client may page over or traverse between.
var EntityTypes = []string{
	LabelPerson,
	LabelEvent,
	LabelOrganisation,
	LabelResource,
	LabelSpatial,
	LabelTemporal,
}

func IsEntityType(label string) bool {
	for _, t := range EntityTypes {
		if t == label {
			return true
		}
	}
	return false
}

// Node is a normalized graph node: its properties plus "_id" and
// "systemLabels". It is safe to encode as JSON.
type Node map[string]interface{}

func (n Node) ID() string {
	if id, ok := n["_id"].(string); ok {
		return id
	}
	return ""
}

func (n Node) Label() string {
	if v, ok := n["label"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Term qualifies a relationship: its type label and optional role.
type Term struct {
	Label     string      `json:"label"`
	Role      interface{} `json:"role,omitempty"`
	RoleLabel string      `json:"roleLabel,omitempty"`
}

// Relation wraps a related node together with the relationship that reached it.
type Relation struct {
	ID   string `json:"_id"`
	Term Term   `json:"term"`
	Ref  Node   `json:"ref"`
}
