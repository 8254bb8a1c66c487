package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/models"
	"gorm.io/gorm"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Stats   *backup.ImportStats `json:"stats,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Stack   string              `json:"stack,omitempty"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// fail writes the error envelope. Server errors carry the stack trace outside production.
func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	resp := Response{Success: false, Error: err.Error()}
	if status >= http.StatusInternalServerError {
		config.LogErrorContext(c.Request.Context(), s.logger, "handlers", c.HandlerName(), nil, err)
		if !s.production {
			resp.Stack = fmt.Sprintf("%+v", err)
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

// failWith maps known errors to their status codes; anything else is a 500.
func (s *Server) failWith(c *gin.Context, err error) {
	s.fail(c, statusOf(err), err)
}

func statusOf(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, backup.ErrEmptySnapshot), errors.Is(err, models.ErrProjectNotFound):
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// badRequest marks an input problem found after binding.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }
