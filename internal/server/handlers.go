package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/archivegraph/internal/core"
	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/traversal"
)

func (s *Server) Health(c *gin.Context) {
	if err := s.Service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RelatedNodes serves nodes reachable from _id. Unauthenticated, so always
// public only.
func (s *Server) RelatedNodes(c *gin.Context) {
	id, err := core.ParseID(c.Query("_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request", "_id must be a node id")
		return
	}

	steps := 1
	if raw := c.Query("steps"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			steps = n
		}
	}

	nodes, err := s.Service.RelatedNodes(c.Request.Context(), id, steps, true)
	if err != nil {
		failWith(c, "related_nodes", err)
		return
	}
	ok(c, nodes)
}

func (s *Server) RelationsOfType(c *gin.Context) {
	id, err := core.ParseID(c.Query("_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request", "_id must be a node id")
		return
	}

	req := traversal.RelationsRequest{
		SourceID:     id,
		SourceType:   c.Query("sourceType"),
		TargetType:   c.Query("targetType"),
		RelationType: c.Query("relType"),
		Public:       true,
	}
	meta, _ := strconv.ParseBool(c.DefaultQuery("meta", "false"))

	out, err := s.Service.RelationsOfType(c.Request.Context(), req, meta)
	if err != nil {
		failWith(c, "relations_of_type", err)
		return
	}
	ok(c, out)
}

// QueryBuilderResponse is the data of a query builder page.
type QueryBuilderResponse struct {
	CurrentPage int          `json:"currentPage"`
	Nodes       []model.Node `json:"nodes"`
	Count       int64        `json:"count"`
	TotalPages  int          `json:"totalPages"`
}

func (s *Server) QueryBuilder(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	req.Public = !s.Config.AdminQueries

	page, err := s.Service.Query(c.Request.Context(), req)
	if err != nil {
		failWith(c, "query_builder", err)
		return
	}
	ok(c, QueryBuilderResponse{
		CurrentPage: page.CurrentPage,
		Nodes:       page.Data,
		Count:       page.TotalItems,
		TotalPages:  page.TotalPages,
	})
}

func (s *Server) Taxonomy(c *gin.Context) {
	systemType := strings.TrimSpace(c.Query("systemType"))
	if systemType == "" {
		fail(c, http.StatusBadRequest, "invalid request", "systemType is required")
		return
	}

	tree, err := s.Service.Taxonomy(c.Request.Context(), systemType)
	if err != nil {
		failWith(c, "taxonomy", err)
		return
	}
	ok(c, tree)
}

func (s *Server) PeopleNetwork(c *gin.Context) {
	nodes, err := s.Service.PeopleNetwork(c.Request.Context(), true)
	if err != nil {
		failWith(c, "people_network", err)
		return
	}
	ok(c, nodes)
}
