package handlers

import (
	"sync/atomic"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the connected resources the routes need. They become available after startup.
type Deps struct {
	DB        *gorm.DB
	Locker    *redislock.Client
	Uploader  backup.ObjectUploader
	Bucket    string
	Publisher backup.EventPublisher
}

// Server owns the REST routes of the CRM.
type Server struct {
	production  bool
	phoneRegion string
	logger      *logrus.Logger
	deps        atomic.Pointer[Deps]
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		production:  cfg.Production,
		phoneRegion: utils.PhoneRegion(),
		logger:      config.GetLogger(),
	}
}

// SetDeps publishes the connected resources; the server is ready from then on.
func (s *Server) SetDeps(d *Deps) {
	s.deps.Store(d)
}

func (s *Server) Ready() bool {
	d := s.deps.Load()
	return d != nil && d.DB != nil
}

func (s *Server) db() *gorm.DB {
	return s.deps.Load().DB
}

func (s *Server) engine() *backup.Engine {
	d := s.deps.Load()
	e := backup.NewEngine(d.DB)
	if d.Publisher != nil {
		e.SetPublisher(d.Publisher)
	}
	return e
}

// Register mounts every /api route on r.
func (s *Server) Register(r gin.IRouter) {
	api := r.Group("/api")

	b := api.Group("/backup")
	b.GET("/export", s.exportSnapshot)
	b.GET("/export.xlsx", s.exportWorkbook)
	b.POST("/import", s.importSnapshot)
	b.DELETE("/clear", s.clearData)
	b.POST("/archive", s.archiveSnapshot)

	registerEntity(api, s, "/customers", entityRoutes[models.Customer]{prepare: s.prepareCustomer})
	registerEntity(api, s, "/brokers", entityRoutes[models.Broker]{prepare: s.prepareBroker})
	registerEntity(api, s, "/projects", entityRoutes[models.Project]{
		prepare: prepareProject,
		create:  models.CreateProject,
		save:    models.SaveProject,
	})
	registerEntity(api, s, "/receipts", receiptRoutes())
	registerEntity(api, s, "/interactions", entityRoutes[models.Interaction]{prepare: prepareInteraction})
	registerEntity(api, s, "/inventory", entityRoutes[models.InventoryItem]{prepare: prepareInventoryItem})
	registerEntity(api, s, "/master-projects", entityRoutes[models.MasterProject]{})
	registerEntity(api, s, "/commission-payments", entityRoutes[models.CommissionPayment]{})

	settings := api.Group("/settings")
	settings.GET("", s.listSettings)
	settings.PUT("", s.putSettings)
	settings.GET("/:key", s.getSetting)
	settings.PUT("/:key", s.putSetting)
}
