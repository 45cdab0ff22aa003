package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConsumptionEntry is one key/value pair from a getLast2values block.
type ConsumptionEntry struct {
	Key   string
	Value string
}

// ConsumptionHistory is the decoded getLast2values answer for one meter
// kind. The backend emits the block in a fixed position order: latest
// reading, previous reading, unit price, new-meter consumption.
type ConsumptionHistory struct {
	ActualDate          string
	ActualValue         string
	PreviousDate        string
	PreviousValue       string
	UnitPrice           string
	NewMeterConsumption string
}

// Last2Values maps meter kind to its raw ordered block.
type Last2Values struct {
	Results map[MeterKind]json.RawMessage `json:"results"`
}

// History decodes the block for one kind, or ok=false when the apartment
// has no meter of that kind.
func (l Last2Values) History(kind MeterKind) (ConsumptionHistory, bool, error) {
	raw, exists := l.Results[kind]
	if !exists || len(raw) == 0 {
		return ConsumptionHistory{}, false, nil
	}
	entries, err := ParseOrderedEntries(raw)
	if err != nil {
		return ConsumptionHistory{}, false, fmt.Errorf("decode %s block: %w", kind, err)
	}
	var h ConsumptionHistory
	if len(entries) > 0 {
		h.ActualDate = entries[0].Key
		h.ActualValue = entries[0].Value
	}
	if len(entries) > 1 {
		h.PreviousDate = entries[1].Key
		h.PreviousValue = entries[1].Value
	}
	if len(entries) > 2 {
		h.UnitPrice = entries[2].Value
	}
	if len(entries) > 3 {
		h.NewMeterConsumption = entries[3].Value
	}
	return h, true, nil
}

// ParseOrderedEntries decodes a JSON object into key/value pairs preserving
// the wire order, which encoding/json maps would destroy. Values may be
// strings or numbers; numbers keep their literal text.
func ParseOrderedEntries(raw []byte) ([]ConsumptionEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var entries []ConsumptionEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var val string
		switch v := valTok.(type) {
		case string:
			val = v
		case json.Number:
			val = v.String()
		case nil:
			val = ""
		default:
			return nil, fmt.Errorf("unsupported value for %q: %v", key, valTok)
		}
		entries = append(entries, ConsumptionEntry{Key: key, Value: val})
	}
	return entries, nil
}
