// Package query composes filter fragments for a primary entity and the
// entities linked to it into one paged read.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/archivegraph/internal/core/filter"
	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/driver"
)

const (
	DefaultLimit = 25
	MaxLimit     = 500
)

var ErrInvalidRequest = errors.New("invalid query request")

// link is one entity type a primary node may be joined to. Each link binds its
// own relationship variable and node symbol so fragments never collide.
type link struct {
	label  string
	rel    string
	symbol string
}

var (
	eventsLink        = link{model.LabelEvent, "r1", "e"}
	organisationsLink = link{model.LabelOrganisation, "r2", "o"}
	peopleLink        = link{model.LabelPerson, "r3", "p"}
	resourcesLink     = link{model.LabelResource, "r4", "rs"}
	temporalsLink     = link{model.LabelTemporal, "r5", "tm"}
	spatialsLink      = link{model.LabelSpatial, "r6", "sp"}
)

type Builder struct {
	Compiler     *filter.Compiler
	DefaultLimit int
}

func NewBuilder(compiler *filter.Compiler, defaultLimit int) *Builder {
	if compiler == nil {
		compiler = filter.NewCompiler(false)
	}
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	return &Builder{Compiler: compiler, DefaultLimit: defaultLimit}
}

type linkClauses struct {
	name    string
	clauses []model.FilterClause
	link    link
	dst     *string
}

// lookup resolves spatial or temporal clauses to the ids of the events they
// are attached to.
type lookup struct {
	name   string
	query  string
	params map[string]interface{}
}

// plan is a compiled request. The events condition is kept apart so resolved
// event ids can be folded into it.
type plan struct {
	params     model.QueryParams
	eventsCond string
	lookups    []lookup
	public     bool
}

// Params compiles req without touching the database. For a non-Event primary
// the spatial and temporal clauses become event id lookups, returned as the
// complete lookup queries in SpatialsQuery and TemporalsQuery.
func (b *Builder) Params(req model.QueryRequest) (model.QueryParams, error) {
	p, err := b.compile(req)
	if err != nil {
		return model.QueryParams{}, err
	}
	for _, l := range p.lookups {
		switch l.name {
		case "spatials":
			p.params.SpatialsQuery = l.query
		case "temporals":
			p.params.TemporalsQuery = l.query
		}
	}
	return p.params, nil
}

func (b *Builder) normalizeRequest(req model.QueryRequest) (model.QueryRequest, error) {
	req.EntityType = strings.TrimSpace(req.EntityType)
	if req.EntityType == "" {
		req.EntityType = model.LabelPerson
	}
	if !model.IsEntityType(req.EntityType) {
		return req, fmt.Errorf("%w: unknown entity type %q", ErrInvalidRequest, req.EntityType)
	}

	if req.Page < 0 || req.Limit < 0 {
		return req, fmt.Errorf("%w: page and limit must not be negative", ErrInvalidRequest)
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = b.DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	req.OrderField = strings.TrimSpace(req.OrderField)
	if req.OrderField == "" {
		req.OrderField = "label"
		if req.EntityType == model.LabelPerson {
			req.OrderField = "lastName"
		}
	}
	if !filter.IsIdentifier(req.OrderField) {
		return req, fmt.Errorf("%w: invalid order field %q", ErrInvalidRequest, req.OrderField)
	}

	switch strings.ToLower(strings.TrimSpace(req.OrderDirection)) {
	case "", "asc":
		req.OrderDirection = "ASC"
	case "desc":
		req.OrderDirection = "DESC"
	default:
		return req, fmt.Errorf("%w: invalid order direction %q", ErrInvalidRequest, req.OrderDirection)
	}

	return req, nil
}

func (b *Builder) compile(req model.QueryRequest) (*plan, error) {
	req, err := b.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{}
	merge := func(f filter.Fragment) {
		for k, v := range f.Params {
			params[k] = v
		}
	}
	compile := func(name string, clauses []model.FilterClause, symbol string) (filter.Fragment, error) {
		f, err := b.Compiler.Compile(clauses, symbol)
		if err != nil {
			return filter.Fragment{}, fmt.Errorf("%w: %s: %w", ErrInvalidRequest, name, err)
		}
		merge(f)
		return f, nil
	}

	mainFrag, err := compile("main", req.Main, "n")
	if err != nil {
		return nil, err
	}
	mainCond := mainFrag.Cypher
	if req.Public {
		mainCond = filter.And(mainCond, "n.status = $status")
		params["status"] = model.StatusPublic
	}

	p := &plan{public: req.Public}
	qp := model.QueryParams{
		Match:          fmt.Sprintf("MATCH (n:%s)", req.EntityType),
		MainQuery:      where(mainCond),
		Order:          req.OrderField,
		OrderDirection: req.OrderDirection,
		Limit:          req.Limit,
		Page:           req.Page,
		Type:           req.EntityType,
	}

	events, err := compile("events", req.Events, eventsLink.symbol)
	if err != nil {
		return nil, err
	}
	p.eventsCond = events.Cypher

	fragments := []linkClauses{
		{"organisations", req.Organisations, organisationsLink, &qp.OrganisationsQuery},
		{"people", req.People, peopleLink, &qp.PeopleQuery},
		{"resources", req.Resources, resourcesLink, &qp.ResourcesQuery},
	}

	if req.EntityType == model.LabelEvent {
		fragments = append(fragments,
			linkClauses{"temporals", req.Temporals, temporalsLink, &qp.TemporalsQuery},
			linkClauses{"spatials", req.Spatials, spatialsLink, &qp.SpatialsQuery},
		)
	} else {
		for _, l := range []struct {
			name     string
			clauses  []model.FilterClause
			symbol   string
			template string
		}{
			{"spatials", req.Spatials, "s", driver.EventIDsBySpatialQuery},
			{"temporals", req.Temporals, "t", driver.EventIDsByTemporalQuery},
		} {
			f, err := b.Compiler.Compile(l.clauses, l.symbol)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRequest, l.name, err)
			}
			if f.Cypher == "" {
				continue
			}
			cond := f.Cypher
			if req.Public {
				cond = filter.And(cond, l.symbol+".status = $status", "e.status = $status")
				f.Params["status"] = model.StatusPublic
			}
			p.lookups = append(p.lookups, lookup{
				name:   l.name,
				query:  fmt.Sprintf(l.template, where(cond)),
				params: f.Params,
			})
		}
	}

	for _, f := range fragments {
		frag, err := compile(f.name, f.clauses, f.link.symbol)
		if err != nil {
			return nil, err
		}
		*f.dst = linkFragment(f.link, visible(frag.Cypher, f.link, req.Public))
	}

	qp.EventsQuery = linkFragment(eventsLink, visible(p.eventsCond, eventsLink, req.Public))
	qp.Params = params
	p.params = qp
	return p, nil
}

// withEventIDs restricts the events join to ids.
func (p *plan) withEventIDs(ids []int64) {
	p.eventsCond = filter.And(p.eventsCond, "id(e) IN $eventIds")
	p.params.EventsQuery = linkFragment(eventsLink, visible(p.eventsCond, eventsLink, p.public))
	p.params.Params["eventIds"] = ids
}

// visible restricts a non-empty link condition to public nodes.
func visible(cond string, l link, public bool) string {
	if cond == "" || !public {
		return cond
	}
	return filter.And(cond, l.symbol+".status = $status")
}

func linkFragment(l link, cond string) string {
	if cond == "" {
		return ""
	}
	return fmt.Sprintf("MATCH (n)-[%s]->(%s:%s) %s", l.rel, l.symbol, l.label, where(cond))
}

func where(cond string) string {
	if cond == "" {
		return ""
	}
	return "WHERE " + cond
}

// body is the shared MATCH ... WHERE ... part of the page and count queries.
func body(qp model.QueryParams) string {
	parts := []string{
		qp.Match,
		qp.MainQuery,
		qp.EventsQuery,
		qp.OrganisationsQuery,
		qp.PeopleQuery,
		qp.ResourcesQuery,
	}
	if qp.Type == model.LabelEvent {
		parts = append(parts, qp.TemporalsQuery, qp.SpatialsQuery)
	}

	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// PageQuery renders the paged read for qp. SKIP and LIMIT bind to $skip and
// $limit.
func PageQuery(qp model.QueryParams) string {
	return fmt.Sprintf("%s\nRETURN DISTINCT n\nORDER BY %s %s\nSKIP $skip LIMIT $limit", body(qp), filter.SortKey("n", qp.Order), qp.OrderDirection)
}

// CountQuery renders the count over the same predicate as PageQuery.
func CountQuery(qp model.QueryParams) string {
	return body(qp) + "\nRETURN count(DISTINCT n) AS total"
}
