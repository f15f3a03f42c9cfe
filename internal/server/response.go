package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/archivegraph/internal/core"
	"github.com/agenthands/archivegraph/internal/core/query"
	"github.com/agenthands/archivegraph/internal/core/traversal"
)

// Response is the envelope every API route answers with.
type Response struct {
	Status bool        `json:"status"`
	Data   interface{} `json:"data"`
	Error  []string    `json:"error"`
	Msg    string      `json:"msg"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: true, Data: data, Error: []string{}})
}

func fail(c *gin.Context, code int, msg string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	c.JSON(code, Response{Status: false, Error: errs, Msg: msg})
}

// failWith maps err to a status code. Database failures are logged and
// answered with a generic message.
func failWith(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidRequest), errors.Is(err, traversal.ErrUnknownType):
		fail(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, core.ErrNotFound):
		fail(c, http.StatusNotFound, "not found", err.Error())
	default:
		slog.Error("request failed", "operation", op, "request_id", c.GetString(requestIDKey), "error", err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
