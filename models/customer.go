package models

import (
	"strings"
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
)

type Customer struct {
	ID             string        `gorm:"primaryKey;size:64" json:"id"`
	Name           string        `gorm:"size:150;not null" json:"name" binding:"required"`
	Phone          string        `gorm:"size:32" json:"phone"`
	Email          string        `gorm:"size:150" json:"email" binding:"omitempty,email"`
	Cnic           string        `gorm:"size:32" json:"cnic"`
	Address        string        `gorm:"type:text" json:"address"`
	Type           ContactType   `gorm:"size:16;not null;check:type IN ('customer','broker','both')" json:"type"`
	Status         ContactStatus `gorm:"size:16;not null;check:status IN ('active','inactive')" json:"status"`
	LinkedBrokerId *string       `gorm:"size:64;index" json:"linkedBrokerId"`
	Notes          string        `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c Customer) GetId() string { return c.ID }

func (c *Customer) SetId(id string) { c.ID = id }

func (c *Customer) ApplyDefaults() {
	if c.Type == "" {
		c.Type = ContactTypeCustomer
	}
	if c.Status == "" {
		c.Status = ContactStatusActive
	}
	c.LinkedBrokerId = utils.NilIfEmpty(utils.DereferencePtr(c.LinkedBrokerId))
}

// NormalizeContact rewrites phone numbers to E.164 and trims the free-text identity fields.
func (c *Customer) NormalizeContact(region string) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = utils.NormalizePhoneNumber(c.Phone, region)
}
