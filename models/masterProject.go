package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterProject is the rollup of a housing scheme: unit counts and money totals.
type MasterProject struct {
	ID             string          `gorm:"primaryKey;size:64" json:"id"`
	Name           string          `gorm:"size:150;not null" json:"name" binding:"required"`
	Location       string          `gorm:"size:200" json:"location"`
	TotalUnits     int             `gorm:"not null" json:"totalUnits"`
	SoldUnits      int             `gorm:"not null" json:"soldUnits"`
	ReservedUnits  int             `gorm:"not null" json:"reservedUnits"`
	AvailableUnits int             `gorm:"not null" json:"availableUnits"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"totalValue"`
	ReceivedValue  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"receivedValue"`
	Status         string          `gorm:"size:32" json:"status"`
	Description    string          `gorm:"type:text" json:"description"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (m MasterProject) GetId() string { return m.ID }

func (m *MasterProject) SetId(id string) { m.ID = id }

func (m *MasterProject) ApplyDefaults() {
	if m.Status == "" {
		m.Status = "active"
	}
}
