package ingredient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts the stored object shape as well as the legacy plain
// string form ("2 eggs" stored as a bare name). Quantities may be numbers or
// strings; units are normalised.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Ingredient{Qty: 0, Unit: DefaultUnit, Name: strings.TrimSpace(s)}
		return nil
	}

	var raw struct {
		Qty  json.RawMessage `json:"qty"`
		Unit string          `json:"unit"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Ingredient{
		Qty:  decodeQty(raw.Qty),
		Unit: storedUnit(raw.Unit),
		Name: strings.TrimSpace(raw.Name),
	}
	return nil
}

func decodeQty(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		return ParseFraction(s)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// DecodeList decodes a stored ingredient array. It never fails: empty or
// malformed input yields an empty list.
func DecodeList(raw string) []Ingredient {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Ingredient{}
	}
	var list []Ingredient
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []Ingredient{}
	}
	if list == nil {
		return []Ingredient{}
	}
	return list
}

// ParseList reads an ingredient list typed by a user: a JSON array when raw
// holds one, otherwise one ingredient per non-blank line.
func ParseList(raw string) []Ingredient {
	raw = strings.TrimSpace(raw)
	var list []Ingredient
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		if list == nil {
			return []Ingredient{}
		}
		return list
	}

	list = []Ingredient{}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		list = append(list, ParseLine(line))
	}
	return list
}

// EncodeList renders list as the JSON text persisted in the store.
func EncodeList(list []Ingredient) string {
	if list == nil {
		list = []Ingredient{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}
