package store

import "encoding/json"

// shallowMerge parses existing as a JSON object, overwrites its top-level
// keys with patch's top-level keys, and returns the merged document.
// Arrays are replaced wholesale, nested objects are replaced wholesale —
// there is no recursive descent. This is the documented, intentional
// contract: deep merge is never performed because concurrent last-write-
// wins semantics depend on each update touching only the keys it supplies.
func shallowMerge(existing []byte, patch map[string]any) (map[string]any, error) {
	base := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &base); err != nil {
			return nil, err
		}
	}
	for k, v := range patch {
		base[k] = v
	}
	return base, nil
}
