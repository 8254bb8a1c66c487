package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// listSettings returns the settings as one flat mapping of key to value.
func (s *Server) listSettings(c *gin.Context) {
	settings, err := models.ListSettings(c.Request.Context(), s.db())
	if err != nil {
		s.failWith(c, err)
		return
	}
	out := make(map[string]json.RawMessage, len(settings))
	for _, setting := range settings {
		out[setting.Key] = json.RawMessage(setting.Value)
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) getSetting(c *gin.Context) {
	setting, err := models.GetSetting(c.Request.Context(), s.db(), c.Param("key"))
	if err != nil {
		s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, setting)
}

// putSetting stores the request body, any JSON value, under the path key.
func (s *Server) putSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		s.fail(c, http.StatusBadRequest, errors.New("setting value must be JSON"))
		return
	}
	setting := &models.Setting{Key: key, Value: datatypes.JSON(body)}
	if err := models.UpsertSetting(c.Request.Context(), s.db(), setting); err != nil {
		s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, setting)
}

// putSettings upserts every key of a settings mapping in one transaction.
func (s *Server) putSettings(c *gin.Context) {
	var values map[string]json.RawMessage
	if err := c.ShouldBindJSON(&values); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			s.fail(c, http.StatusBadRequest, errors.New("setting key is required"))
			return
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := c.Request.Context()
	err := s.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			if err := models.UpsertSetting(ctx, tx, &models.Setting{Key: strings.TrimSpace(k), Value: datatypes.JSON(values[k])}); err != nil {
				return errors.Wrapf(err, "setting %s", k)
			}
		}
		return nil
	})
	if err != nil {
		s.failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "Settings saved"})
}
