package backup

// EntityStats counts the outcome of every record of one entity in an import run.
type EntityStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

func (s *EntityStats) Total() int { return s.Imported + s.Skipped + s.Errors }

// ImportStats reports per entity, in import order.
type ImportStats struct {
	Customers          EntityStats `json:"customers"`
	Brokers            EntityStats `json:"brokers"`
	Projects           EntityStats `json:"projects"`
	Receipts           EntityStats `json:"receipts"`
	Interactions       EntityStats `json:"interactions"`
	Inventory          EntityStats `json:"inventory"`
	MasterProjects     EntityStats `json:"masterProjects"`
	CommissionPayments EntityStats `json:"commissionPayments"`
	Settings           EntityStats `json:"settings"`
}

func (s *ImportStats) Imported() int {
	n := 0
	for _, e := range s.entities() {
		n += e.Imported
	}
	return n
}

func (s *ImportStats) Errors() int {
	n := 0
	for _, e := range s.entities() {
		n += e.Errors
	}
	return n
}

func (s *ImportStats) entities() []*EntityStats {
	return []*EntityStats{
		&s.Customers, &s.Brokers, &s.Projects, &s.Receipts, &s.Interactions,
		&s.Inventory, &s.MasterProjects, &s.CommissionPayments, &s.Settings,
	}
}

// ClearResult is the number of rows removed per table.
type ClearResult map[string]int64
