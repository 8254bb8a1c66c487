package models

import (
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
)

// CommissionPayment pays a broker or a company representative for a project.
// ProjectId and RecipientId are not constrained, so payments survive project deletes.
type CommissionPayment struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	ProjectId     *string         `gorm:"size:64;index" json:"projectId"`
	RecipientType RecipientType   `gorm:"size:16;not null" json:"recipientType"`
	RecipientId   string          `gorm:"size:64" json:"recipientId"`
	RecipientName string          `gorm:"size:150" json:"recipientName"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date          string          `gorm:"size:32" json:"date"`
	Method        string          `gorm:"size:32" json:"method"`
	Status        string          `gorm:"size:32" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c CommissionPayment) GetId() string { return c.ID }

func (c *CommissionPayment) SetId(id string) { c.ID = id }

func (c *CommissionPayment) ApplyDefaults() {
	if c.RecipientType == "" {
		c.RecipientType = RecipientTypeBroker
	}
	if c.Status == "" {
		c.Status = "paid"
	}
	c.ProjectId = utils.NilIfEmpty(utils.DereferencePtr(c.ProjectId))
}
