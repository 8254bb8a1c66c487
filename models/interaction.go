package models

import (
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"gorm.io/datatypes"
)

// Interaction is a logged touchpoint with a customer or a broker; ContactType selects which id is used.
type Interaction struct {
	ID           string                 `gorm:"primaryKey;size:64" json:"id"`
	ContactType  InteractionContactType `gorm:"size:16;not null" json:"contactType"`
	CustomerId   *string                `gorm:"size:64;index" json:"customerId"`
	BrokerId     *string                `gorm:"size:64;index" json:"brokerId"`
	Type         string                 `gorm:"size:32" json:"type"`
	Subject      string                 `gorm:"size:200" json:"subject"`
	Date         string                 `gorm:"size:32" json:"date"`
	FollowUpDate string                 `gorm:"size:32" json:"followUpDate"`
	Status       string                 `gorm:"size:32" json:"status"`
	Contacts     datatypes.JSON         `json:"contacts"`
	Notes        string                 `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (i Interaction) GetId() string { return i.ID }

func (i *Interaction) SetId(id string) { i.ID = id }

func (i *Interaction) ApplyDefaults() {
	if i.ContactType == "" {
		i.ContactType = InteractionContactCustomer
	}
	if len(i.Contacts) == 0 {
		i.Contacts = datatypes.JSON("[]")
	}
	i.CustomerId = utils.NilIfEmpty(utils.DereferencePtr(i.CustomerId))
	i.BrokerId = utils.NilIfEmpty(utils.DereferencePtr(i.BrokerId))
}

// ContactId returns the id the interaction refers to according to its contact type.
func (i Interaction) ContactId() *string {
	if i.ContactType == InteractionContactBroker {
		return i.BrokerId
	}
	return i.CustomerId
}
