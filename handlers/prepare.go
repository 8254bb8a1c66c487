package handlers

import (
	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

func (s *Server) prepareCustomer(c *models.Customer) error {
	c.NormalizeContact(s.phoneRegion)
	if c.Type != "" && !c.Type.IsValid() {
		return badRequest{errors.Errorf("invalid customer type %q", c.Type)}
	}
	if c.Status != "" && !c.Status.IsValid() {
		return badRequest{errors.Errorf("invalid status %q", c.Status)}
	}
	return nil
}

func (s *Server) prepareBroker(b *models.Broker) error {
	b.NormalizeContact(s.phoneRegion)
	if b.Status != "" && !b.Status.IsValid() {
		return badRequest{errors.Errorf("invalid status %q", b.Status)}
	}
	return nil
}

func prepareProject(p *models.Project) error {
	seq, err := embeddedSequence("installments", p.Installments)
	if err != nil {
		return err
	}
	p.Installments = seq
	return nil
}

func prepareInteraction(i *models.Interaction) error {
	seq, err := embeddedSequence("contacts", i.Contacts)
	if err != nil {
		return err
	}
	i.Contacts = seq
	return nil
}

func prepareInventoryItem(item *models.InventoryItem) error {
	seq, err := embeddedSequence("plotFeatures", item.PlotFeatures)
	if err != nil {
		return err
	}
	item.PlotFeatures = seq
	return nil
}

func embeddedSequence(field string, raw datatypes.JSON) (datatypes.JSON, error) {
	seq, err := backup.ParseEmbedded(raw).Sequence()
	if err != nil {
		return nil, badRequest{errors.Wrap(err, field)}
	}
	return seq, nil
}
