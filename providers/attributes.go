package providers

import (
	"encoding/json"
	"strconv"
)

// NormalizeAttributes flattens a decoded JSON object into string attributes.
//
// Strings are kept as-is, JSON null values are dropped (the attribute is absent),
// numbers use their shortest decimal form, booleans become "true"/"false", and
// nested objects or arrays are re-encoded as compact JSON.
func NormalizeAttributes(raw map[string]any) map[string]string {
	attrs := make(map[string]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			attrs[name] = v
		case bool:
			attrs[name] = strconv.FormatBool(v)
		case float64:
			attrs[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			attrs[name] = v.String()
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			attrs[name] = string(encoded)
		}
	}
	return attrs
}
