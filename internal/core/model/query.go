package model

// QueryRequest is the structured query accepted by the query builder.
type QueryRequest struct {
	EntityType     string     `json:"entityType"`
	Main           ClauseList `json:"main"`
	Events         ClauseList `json:"events"`
	Organisations  ClauseList `json:"organisations"`
	People         ClauseList `json:"people"`
	Resources      ClauseList `json:"resources"`
	Spatials       ClauseList `json:"spatials"`
	Temporals      ClauseList `json:"temporals"`
	Page           int        `json:"page"`
	Limit          int        `json:"limit"`
	OrderField     string     `json:"orderField"`
	OrderDirection string     `json:"orderDirection"`
	// Public restricts results to nodes whose status is public.
	Public bool `json:"-"`
}

// QueryParams is a compiled QueryRequest, ready to be rendered into the page
// and count queries. Params holds the values of every fragment.
type QueryParams struct {
	Match              string
	MainQuery          string
	EventsQuery        string
	OrganisationsQuery string
	PeopleQuery        string
	ResourcesQuery     string
	TemporalsQuery     string
	SpatialsQuery      string
	Order              string
	OrderDirection     string
	Skip               int
	Limit              int
	Page               int
	Type               string
	Params             map[string]interface{}
}

type Page struct {
	CurrentPage int    `json:"currentPage"`
	Data        []Node `json:"data"`
	TotalItems  int64  `json:"totalItems"`
	TotalPages  int    `json:"totalPages"`
}
