package model

type TaxonomyTree struct {
	ID         string          `json:"_id"`
	Label      string          `json:"label"`
	LabelID    string          `json:"labelId,omitempty"`
	SystemType string          `json:"systemType,omitempty"`
	Locked     bool            `json:"locked"`
	Children   []*TaxonomyTree `json:"children"`
}
