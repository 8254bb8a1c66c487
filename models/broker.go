package models

import (
	"strings"
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the percentage applied when a broker record carries none.
var DefaultCommissionRate = decimal.NewFromInt(1)

type Broker struct {
	ID               string          `gorm:"primaryKey;size:64" json:"id"`
	Name             string          `gorm:"size:150;not null" json:"name" binding:"required"`
	Phone            string          `gorm:"size:32" json:"phone"`
	Email            string          `gorm:"size:150" json:"email" binding:"omitempty,email"`
	Cnic             string          `gorm:"size:32" json:"cnic"`
	Company          string          `gorm:"size:150" json:"company"`
	Address          string          `gorm:"type:text" json:"address"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"commissionRate"`
	Status           ContactStatus   `gorm:"size:16;not null;check:status IN ('active','inactive')" json:"status"`
	LinkedCustomerId *string         `gorm:"size:64;index" json:"linkedCustomerId"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b Broker) GetId() string { return b.ID }

func (b *Broker) SetId(id string) { b.ID = id }

func (b *Broker) ApplyDefaults() {
	if b.Status == "" {
		b.Status = ContactStatusActive
	}
	if b.CommissionRate.IsZero() {
		b.CommissionRate = DefaultCommissionRate
	}
	b.LinkedCustomerId = utils.NilIfEmpty(utils.DereferencePtr(b.LinkedCustomerId))
}

func (b *Broker) NormalizeContact(region string) {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.TrimSpace(b.Email)
	b.Phone = utils.NormalizePhoneNumber(b.Phone, region)
}
