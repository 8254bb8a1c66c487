package models

import (
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type InventoryItem struct {
	ID               string          `gorm:"primaryKey;size:64" json:"id"`
	ProjectName      string          `gorm:"size:150" json:"projectName"`
	Block            string          `gorm:"size:50" json:"block"`
	PlotNumber       string          `gorm:"size:50" json:"plotNumber"`
	Marlas           decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"marlas"`
	RatePerMarla     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"ratePerMarla"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"totalValue"`
	Status           InventoryStatus `gorm:"size:32;not null" json:"status"`
	SoldToCustomerId *string         `gorm:"size:64;index" json:"soldToCustomerId"`
	PlotFeatures     datatypes.JSON  `json:"plotFeatures"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (InventoryItem) TableName() string { return "inventory" }

func (i InventoryItem) GetId() string { return i.ID }

func (i *InventoryItem) SetId(id string) { i.ID = id }

func (i *InventoryItem) ApplyDefaults() {
	if i.Status == "" {
		i.Status = InventoryStatusAvailable
	}
	if len(i.PlotFeatures) == 0 {
		i.PlotFeatures = datatypes.JSON("[]")
	}
	i.SoldToCustomerId = utils.NilIfEmpty(utils.DereferencePtr(i.SoldToCustomerId))
}
