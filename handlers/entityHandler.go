package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/utils"
	"gorm.io/gorm"
)

type idSetter interface {
	SetId(id string)
}

// entityRoutes configures the CRUD routes of one entity. Unset writers fall back to the
// generic entity store.
type entityRoutes[T models.Entity] struct {
	prepare func(row *T) error
	create  func(ctx context.Context, db *gorm.DB, row *T) error
	save    func(ctx context.Context, db *gorm.DB, row *T) error
	remove  func(ctx context.Context, db *gorm.DB, id string) error
}

type entityHandler[T models.Entity] struct {
	s      *Server
	routes entityRoutes[T]
}

func registerEntity[T models.Entity](r gin.IRouter, s *Server, path string, routes entityRoutes[T]) {
	if routes.create == nil {
		routes.create = models.CreateModel[T]
	}
	if routes.save == nil {
		routes.save = models.UpsertModel[T]
	}
	if routes.remove == nil {
		routes.remove = models.DeleteModel[T]
	}
	h := &entityHandler[T]{s: s, routes: routes}
	g := r.Group(path)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.put)
	g.DELETE("/:id", h.delete)
}

func (h *entityHandler[T]) list(c *gin.Context) {
	rows, err := models.ListModels[T](c.Request.Context(), h.s.db())
	if err != nil {
		h.s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *entityHandler[T]) get(c *gin.Context) {
	row, err := models.GetModel[T](c.Request.Context(), h.s.db(), c.Param("id"))
	if err != nil {
		h.s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, row)
}

func (h *entityHandler[T]) create(c *gin.Context) {
	row, bound := h.bind(c)
	if !bound {
		return
	}
	ctx := c.Request.Context()
	db := h.s.db()
	if id := (*row).GetId(); id == "" {
		any(row).(idSetter).SetId(utils.NewId())
	} else if err := utils.ValidateResourceId[T](ctx, db, id); err == nil {
		h.s.fail(c, http.StatusConflict, fmt.Errorf("record %s already exists", id))
		return
	}
	if err := h.routes.create(ctx, db, row); err != nil {
		h.s.failWith(c, err)
		return
	}
	h.respond(c, http.StatusCreated, (*row).GetId())
}

// put stores the body under the path id, inserting it when absent.
func (h *entityHandler[T]) put(c *gin.Context) {
	row, bound := h.bind(c)
	if !bound {
		return
	}
	any(row).(idSetter).SetId(c.Param("id"))
	if err := h.routes.save(c.Request.Context(), h.s.db(), row); err != nil {
		h.s.failWith(c, err)
		return
	}
	h.respond(c, http.StatusOK, (*row).GetId())
}

func (h *entityHandler[T]) delete(c *gin.Context) {
	if err := h.routes.remove(c.Request.Context(), h.s.db(), c.Param("id")); err != nil {
		h.s.failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "Deleted successfully"})
}

func (h *entityHandler[T]) bind(c *gin.Context) (*T, bool) {
	row := new(T)
	if err := c.ShouldBindJSON(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.AbortWithStatusJSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "validation failed",
				Data:    utils.ProcessValidationErrors(err),
			})
			return nil, false
		}
		h.s.fail(c, http.StatusBadRequest, err)
		return nil, false
	}
	if h.routes.prepare != nil {
		if err := h.routes.prepare(row); err != nil {
			h.s.fail(c, http.StatusBadRequest, err)
			return nil, false
		}
	}
	return row, true
}

// respond re-reads the stored row so derived columns are current.
func (h *entityHandler[T]) respond(c *gin.Context, status int, id string) {
	stored, err := models.GetModel[T](c.Request.Context(), h.s.db(), id)
	if err != nil {
		h.s.failWith(c, err)
		return
	}
	ok(c, status, stored)
}
