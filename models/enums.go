package models

type ContactType string

const (
	ContactTypeCustomer ContactType = "customer"
	ContactTypeBroker   ContactType = "broker"
	ContactTypeBoth     ContactType = "both"
)

func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeCustomer, ContactTypeBroker, ContactTypeBoth:
		return true
	}
	return false
}

type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
)

func (s ContactStatus) IsValid() bool {
	return s == ContactStatusActive || s == ContactStatusInactive
}

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// PaymentCycle is the installment period of a project.
type PaymentCycle string

const (
	PaymentCycleMonthly   PaymentCycle = "monthly"
	PaymentCycleQuarterly PaymentCycle = "quarterly"
	PaymentCycleBiannual  PaymentCycle = "bi-annual"
	PaymentCycleAnnual    PaymentCycle = "annual"
	PaymentCycleOneTime   PaymentCycle = "one-time"
)

// InteractionContactType says which table Interaction.ContactId points into.
type InteractionContactType string

const (
	InteractionContactCustomer InteractionContactType = "customer"
	InteractionContactBroker   InteractionContactType = "broker"
)

type InventoryStatus string

const (
	InventoryStatusAvailable InventoryStatus = "available"
	InventoryStatusReserved  InventoryStatus = "reserved"
	InventoryStatusSold      InventoryStatus = "sold"
)

// RecipientType disambiguates CommissionPayment.RecipientId.
type RecipientType string

const (
	RecipientTypeBroker  RecipientType = "broker"
	RecipientTypeCompany RecipientType = "company"
)
