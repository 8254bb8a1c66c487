package backup

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

type embeddedForm int

const (
	embeddedAbsent embeddedForm = iota
	embeddedStructured
	embeddedEncoded
)

// maxEncodingDepth bounds how many layers of string encoding are peeled off.
const maxEncodingDepth = 4

var emptySequence = datatypes.JSON("[]")

// Embedded is a nested JSON field as found in a row or a snapshot: missing, already structured,
// or carried as an encoded JSON string.
type Embedded struct {
	form       embeddedForm
	structured json.RawMessage
	encoded    string
}

func ParseEmbedded(raw []byte) Embedded {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return Embedded{form: embeddedAbsent}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return Embedded{form: embeddedEncoded, encoded: s}
		}
	}
	return Embedded{form: embeddedStructured, structured: json.RawMessage(raw)}
}

// Sequence returns the field as a structured JSON array. Absent and empty values become [].
func (e Embedded) Sequence() (datatypes.JSON, error) {
	for depth := 0; depth < maxEncodingDepth; depth++ {
		switch e.form {
		case embeddedAbsent:
			return emptySequence, nil
		case embeddedStructured:
			if e.structured[0] != '[' {
				return nil, errors.New("embedded value is not a sequence")
			}
			var buf bytes.Buffer
			if err := json.Compact(&buf, e.structured); err != nil {
				return nil, errors.Wrap(err, "invalid embedded value")
			}
			return datatypes.JSON(buf.Bytes()), nil
		case embeddedEncoded:
			inner := bytes.TrimSpace([]byte(e.encoded))
			if len(inner) == 0 {
				return emptySequence, nil
			}
			if !json.Valid(inner) {
				return nil, errors.New("embedded string is not valid JSON")
			}
			e = ParseEmbedded(inner)
		}
	}
	return nil, errors.New("embedded value is nested too deeply")
}

// SequenceOrEmpty is Sequence with malformed input degraded to [].
func (e Embedded) SequenceOrEmpty() (datatypes.JSON, bool) {
	seq, err := e.Sequence()
	if err != nil {
		return emptySequence, false
	}
	return seq, true
}
