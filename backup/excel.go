package backup

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name    string
	columns []string
	rows    func() ([]any, error)
}

// WriteWorkbook renders snap as an xlsx workbook with one sheet per entity and
// one header row of camel field names.
func WriteWorkbook(w io.Writer, snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return errors.Wrap(err, "header style")
	}

	sheets := []sheetSpec{
		{"Customers", customerFields.camelNames(), rowsOf(snap.Customers)},
		{"Brokers", brokerFields.camelNames(), rowsOf(snap.Brokers)},
		{"Projects", projectFields.camelNames(), rowsOf(snap.Projects)},
		{"Receipts", receiptFields.camelNames(), rowsOf(snap.Receipts)},
		{"Interactions", interactionFields.camelNames(), rowsOf(snap.Interactions)},
		{"Inventory", inventoryFields.camelNames(), rowsOf(snap.Inventory)},
		{"MasterProjects", masterProjectFields.camelNames(), rowsOf(snap.MasterProjects)},
		{"CommissionPayments", commissionPaymentFields.camelNames(), rowsOf(snap.CommissionPayments)},
		{"Settings", []string{"key", "value"}, settingRows(snap.Settings)},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return errors.Wrapf(err, "rename sheet %s", sheet.name)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return errors.Wrapf(err, "create sheet %s", sheet.name)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet sheetSpec, headerStyle int) error {
	header := make([]any, len(sheet.columns))
	for i, c := range sheet.columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
		return errors.Wrapf(err, "header of %s", sheet.name)
	}
	last, _ := excelize.CoordinatesToCellName(len(sheet.columns), 1)
	if err := f.SetCellStyle(sheet.name, "A1", last, headerStyle); err != nil {
		return errors.Wrapf(err, "header style of %s", sheet.name)
	}

	rows, err := sheet.rows()
	if err != nil {
		return errors.Wrapf(err, "rows of %s", sheet.name)
	}
	for i, row := range rows {
		values, err := cellValues(row, sheet.columns)
		if err != nil {
			return errors.Wrapf(err, "row %d of %s", i, sheet.name)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
			return errors.Wrapf(err, "row %d of %s", i, sheet.name)
		}
	}
	return nil
}

func rowsOf[T any](list []*T) func() ([]any, error) {
	return func() ([]any, error) {
		rows := make([]any, len(list))
		for i, r := range list {
			rows[i] = r
		}
		return rows, nil
	}
}

func settingRows(settings map[string]json.RawMessage) func() ([]any, error) {
	return func() ([]any, error) {
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([]any, len(keys))
		for i, k := range keys {
			rows[i] = map[string]json.RawMessage{"key": mustQuote(k), "value": settings[k]}
		}
		return rows, nil
	}
}

// cellValues flattens row through its JSON form: scalars become cell values,
// nested values become their compact JSON text.
func cellValues(row any, columns []string) ([]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = cellValue(fields[c])
	}
	return values, nil
}

func cellValue(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	case 't', 'f':
		return string(raw) == "true"
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if f, err := n.Float64(); err == nil {
				return f
			}
		}
	}
	return string(raw)
}

func mustQuote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
