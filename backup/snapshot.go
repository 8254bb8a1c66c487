package backup

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/pkg/errors"
)

const SnapshotVersion = "1.0"

// exportDateLayout matches the millisecond UTC timestamps the web client produces.
const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrEmptySnapshot = errors.New("no data provided")
	errNotAnObject   = errors.New("record is not an object")
)

// Snapshot is the full export document.
type Snapshot struct {
	Version            string                      `json:"version"`
	ExportDate         string                      `json:"exportDate"`
	Customers          []*models.Customer          `json:"customers"`
	Brokers            []*models.Broker            `json:"brokers"`
	Projects           []*models.Project           `json:"projects"`
	Receipts           []*models.Receipt           `json:"receipts"`
	Interactions       []*models.Interaction       `json:"interactions"`
	Inventory          []*models.InventoryItem     `json:"inventory"`
	MasterProjects     []*models.MasterProject     `json:"masterProjects"`
	CommissionPayments []*models.CommissionPayment `json:"commissionPayments"`
	Settings           map[string]json.RawMessage  `json:"settings"`
}

// ImportDocument is a snapshot as received. Records stay raw until the engine parses each one,
// so a malformed row only fails itself.
type ImportDocument struct {
	Version            string            `json:"version"`
	ExportDate         string            `json:"exportDate"`
	Customers          []json.RawMessage `json:"customers"`
	Brokers            []json.RawMessage `json:"brokers"`
	Projects           []json.RawMessage `json:"projects"`
	Receipts           []json.RawMessage `json:"receipts"`
	Interactions       []json.RawMessage `json:"interactions"`
	Inventory          []json.RawMessage `json:"inventory"`
	MasterProjects     []json.RawMessage `json:"masterProjects"`
	CommissionPayments []json.RawMessage `json:"commissionPayments"`
	Settings           json.RawMessage   `json:"settings"`
}

// DecodeImportDocument parses a request body. An empty body or a JSON null is ErrEmptySnapshot.
func DecodeImportDocument(body []byte) (*ImportDocument, error) {
	if isNull(body) {
		return nil, ErrEmptySnapshot
	}
	var doc ImportDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid snapshot")
	}
	return &doc, nil
}

type settingEntry struct {
	Key   string
	Value json.RawMessage
}

// settingEntries accepts the settings mapping, or the older list of {key, value} rows.
// Entries come back sorted by key.
func (d *ImportDocument) settingEntries() ([]settingEntry, error) {
	raw := bytes.TrimSpace(d.Settings)
	if isNull(raw) {
		return nil, nil
	}
	var entries []settingEntry
	if raw[0] == '[' {
		var rows []struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, errors.Wrap(err, "invalid settings")
		}
		for _, r := range rows {
			entries = append(entries, settingEntry{Key: r.Key, Value: r.Value})
		}
	} else {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.Wrap(err, "invalid settings")
		}
		for k, v := range m {
			entries = append(entries, settingEntry{Key: k, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
