package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is one unit sold to a customer, optionally through a broker.
// Received is a derived aggregate: the sum of the amounts of the receipts pointing at the project.
type Project struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	CustomerId   string          `gorm:"size:64;not null;index" json:"customerId" binding:"required"`
	Customer     *Customer       `gorm:"foreignKey:CustomerId;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	BrokerId     *string         `gorm:"size:64;index" json:"brokerId"`
	Broker       *Broker         `gorm:"foreignKey:BrokerId;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Name         string          `gorm:"size:150" json:"name"`
	Block        string          `gorm:"size:50" json:"block"`
	PlotNumber   string          `gorm:"size:50" json:"plotNumber"`
	Marlas       decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"marlas"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Sale         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sale"`
	Received     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"received"`
	Status       ProjectStatus   `gorm:"size:32;not null" json:"status"`
	Cycle        PaymentCycle    `gorm:"size:32;not null" json:"cycle"`
	Installments datatypes.JSON  `json:"installments"`
	StartDate    string          `gorm:"size:32" json:"startDate"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Installment lives inside Project.Installments; it is never stored on its own.
type Installment struct {
	Number      int             `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"dueDate"`
	Paid        bool            `json:"paid"`
	PartialPaid decimal.Decimal `json:"partialPaid"`
	ReceiptId   *string         `json:"receiptId,omitempty"`
}

func (p Project) GetId() string { return p.ID }

func (p *Project) SetId(id string) { p.ID = id }

func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if p.Cycle == "" {
		p.Cycle = PaymentCycleMonthly
	}
	if len(p.Installments) == 0 {
		p.Installments = datatypes.JSON("[]")
	}
	p.BrokerId = utils.NilIfEmpty(utils.DereferencePtr(p.BrokerId))
}

// InstallmentList decodes the embedded installment sequence.
func (p Project) InstallmentList() ([]Installment, error) {
	list := make([]Installment, 0)
	if len(p.Installments) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(p.Installments, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateProject inserts a project. No receipt can point at a new id, so received starts at zero.
func CreateProject(ctx context.Context, db *gorm.DB, p *Project) error {
	p.Received = decimal.Zero
	return CreateModel(ctx, db, p)
}

// SaveProject upserts a project and then resets received from its receipts, so a write
// through the API never sets the total directly.
func SaveProject(ctx context.Context, db *gorm.DB, p *Project) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := UpsertModel(ctx, tx, p); err != nil {
			return err
		}
		return RecomputeProjectReceived(ctx, tx, p.ID)
	})
}
