package backup

import (
	"bytes"
	"encoding/json"
	"strings"
)

type fieldKind int

const (
	fieldValue  fieldKind = iota // passed through untouched
	fieldRef                     // id or reference: trimmed, numbers become strings, "null"/"undefined"/"" mean absent
	fieldNumber                  // numeric: "" means absent
)

// fieldAlias names one record field in both accepted spellings.
type fieldAlias struct {
	camel string
	snake string
	kind  fieldKind
}

type aliasTable []fieldAlias

func (t aliasTable) camelNames() []string {
	names := make([]string, len(t))
	for i, f := range t {
		names[i] = f.camel
	}
	return names
}

var timestampFields = []fieldAlias{
	{"createdAt", "created_at", fieldValue},
	{"updatedAt", "updated_at", fieldValue},
}

func withTimestamps(fields ...fieldAlias) aliasTable {
	return append(aliasTable(fields), timestampFields...)
}

var customerFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"name", "name", fieldValue},
	fieldAlias{"phone", "phone", fieldValue},
	fieldAlias{"email", "email", fieldValue},
	fieldAlias{"cnic", "cnic", fieldValue},
	fieldAlias{"address", "address", fieldValue},
	fieldAlias{"type", "type", fieldValue},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"linkedBrokerId", "linked_broker_id", fieldRef},
	fieldAlias{"notes", "notes", fieldValue},
)

var brokerFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"name", "name", fieldValue},
	fieldAlias{"phone", "phone", fieldValue},
	fieldAlias{"email", "email", fieldValue},
	fieldAlias{"cnic", "cnic", fieldValue},
	fieldAlias{"company", "company", fieldValue},
	fieldAlias{"address", "address", fieldValue},
	fieldAlias{"commissionRate", "commission_rate", fieldNumber},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"linkedCustomerId", "linked_customer_id", fieldRef},
	fieldAlias{"notes", "notes", fieldValue},
)

var projectFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"customerId", "customer_id", fieldRef},
	fieldAlias{"brokerId", "broker_id", fieldRef},
	fieldAlias{"name", "name", fieldValue},
	fieldAlias{"block", "block", fieldValue},
	fieldAlias{"plotNumber", "plot_number", fieldValue},
	fieldAlias{"marlas", "marlas", fieldNumber},
	fieldAlias{"rate", "rate", fieldNumber},
	fieldAlias{"sale", "sale", fieldNumber},
	fieldAlias{"received", "received", fieldNumber},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"cycle", "cycle", fieldValue},
	fieldAlias{"installments", "installments", fieldValue},
	fieldAlias{"startDate", "start_date", fieldValue},
	fieldAlias{"notes", "notes", fieldValue},
)

var receiptFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"customerId", "customer_id", fieldRef},
	fieldAlias{"projectId", "project_id", fieldRef},
	fieldAlias{"amount", "amount", fieldNumber},
	fieldAlias{"date", "date", fieldValue},
	fieldAlias{"method", "method", fieldValue},
	fieldAlias{"reference", "reference", fieldValue},
	fieldAlias{"notes", "notes", fieldValue},
)

var interactionFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"contactType", "contact_type", fieldValue},
	fieldAlias{"customerId", "customer_id", fieldRef},
	fieldAlias{"brokerId", "broker_id", fieldRef},
	fieldAlias{"type", "type", fieldValue},
	fieldAlias{"subject", "subject", fieldValue},
	fieldAlias{"date", "date", fieldValue},
	fieldAlias{"followUpDate", "follow_up_date", fieldValue},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"contacts", "contacts", fieldValue},
	fieldAlias{"notes", "notes", fieldValue},
)

var inventoryFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"projectName", "project_name", fieldValue},
	fieldAlias{"block", "block", fieldValue},
	fieldAlias{"plotNumber", "plot_number", fieldValue},
	fieldAlias{"marlas", "marlas", fieldNumber},
	fieldAlias{"ratePerMarla", "rate_per_marla", fieldNumber},
	fieldAlias{"totalValue", "total_value", fieldNumber},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"soldToCustomerId", "sold_to_customer_id", fieldRef},
	fieldAlias{"plotFeatures", "plot_features", fieldValue},
	fieldAlias{"notes", "notes", fieldValue},
)

var masterProjectFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"name", "name", fieldValue},
	fieldAlias{"location", "location", fieldValue},
	fieldAlias{"totalUnits", "total_units", fieldNumber},
	fieldAlias{"soldUnits", "sold_units", fieldNumber},
	fieldAlias{"reservedUnits", "reserved_units", fieldNumber},
	fieldAlias{"availableUnits", "available_units", fieldNumber},
	fieldAlias{"totalValue", "total_value", fieldNumber},
	fieldAlias{"receivedValue", "received_value", fieldNumber},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"description", "description", fieldValue},
)

var commissionPaymentFields = withTimestamps(
	fieldAlias{"id", "id", fieldRef},
	fieldAlias{"projectId", "project_id", fieldRef},
	fieldAlias{"recipientType", "recipient_type", fieldValue},
	fieldAlias{"recipientId", "recipient_id", fieldRef},
	fieldAlias{"recipientName", "recipient_name", fieldValue},
	fieldAlias{"amount", "amount", fieldNumber},
	fieldAlias{"date", "date", fieldValue},
	fieldAlias{"method", "method", fieldValue},
	fieldAlias{"status", "status", fieldValue},
	fieldAlias{"notes", "notes", fieldValue},
)

// Record is one snapshot row as received, keyed by whatever spelling the producer used.
type Record map[string]json.RawMessage

// canonicalize resolves every aliased field to its camel key, preferring the camel spelling
// when both are present. Unknown keys are dropped.
func (t aliasTable) canonicalize(rec Record) Record {
	out := make(Record, len(t))
	for _, f := range t {
		v, ok := rec[f.camel]
		if !ok || isNull(v) {
			v, ok = rec[f.snake]
		}
		if !ok {
			continue
		}
		if v, ok = f.kind.clean(v); ok {
			out[f.camel] = v
		}
	}
	return out
}

func (k fieldKind) clean(v json.RawMessage) (json.RawMessage, bool) {
	v = bytes.TrimSpace(v)
	if isNull(v) {
		return nil, false
	}
	switch k {
	case fieldRef:
		if v[0] != '"' {
			// numeric ids from older producers
			if json.Valid(v) && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9')) {
				b, _ := json.Marshal(string(v))
				return b, true
			}
			return v, true
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return v, true
		}
		s = strings.TrimSpace(s)
		if isBlankRef(s) {
			return nil, false
		}
		b, _ := json.Marshal(s)
		return b, true
	case fieldNumber:
		if string(v) == `""` {
			return nil, false
		}
	}
	return v, true
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || string(v) == "null"
}

// isBlankRef reports whether a reference string carries no id.
func isBlankRef(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "undefined":
		return true
	}
	return false
}

// id returns the record's natural identifier, or "" when it has none.
func (r Record) id() string {
	return r.str("id")
}

func (r Record) str(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// decode maps the canonical record onto dest through dest's json tags.
func (r Record) decode(dest any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func parseRecord(raw json.RawMessage) (Record, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNotAnObject
	}
	return rec, nil
}
