package api

import (
	"encoding/json"
	"fmt"
)

// The backend's responses are loose documents: some endpoints wrap payloads
// in a {"data": ...} envelope and identifiers arrive as either "id" or
// "_id". Normalization happens here, at the boundary, so the rest of the
// client only ever sees entities with a single id field.

// unwrapEnvelope returns the inner payload of a {"data": ...} envelope, or
// the input unchanged when there is no envelope.
func unwrapEnvelope(data []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		return env.Data
	}
	return data
}

// normalizeObject rewrites one raw document so "_id" backfills a missing
// "id" before decoding into v.
func normalizeObject(data []byte, v interface{}) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	if _, ok := doc["id"]; !ok {
		if alt, ok := doc["_id"]; ok {
			doc["id"] = alt
		}
	}
	if _, ok := doc["id"]; !ok {
		return fmt.Errorf("document has no id or _id field")
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding document: %w", err)
	}
	return json.Unmarshal(merged, v)
}

// decodeEntity decodes a single (possibly enveloped, possibly _id-aliased)
// document into v.
func decodeEntity(data []byte, v interface{}) error {
	return normalizeObject(unwrapEnvelope(data), v)
}

// decodeEntityList decodes a list of documents into out, normalizing each
// element. out must be a pointer to a slice.
func decodeEntityList(data []byte, out interface{}) error {
	raw := unwrapEnvelope(data)
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decoding document list: %w", err)
	}
	normalized := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(item, &doc); err != nil {
			return fmt.Errorf("decoding document %d: %w", i, err)
		}
		if _, ok := doc["id"]; !ok {
			if alt, ok := doc["_id"]; ok {
				doc["id"] = alt
			}
		}
		if _, ok := doc["id"]; !ok {
			return fmt.Errorf("document %d has no id or _id field", i)
		}
		merged, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("re-encoding document %d: %w", i, err)
		}
		normalized = append(normalized, merged)
	}
	list, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("re-encoding document list: %w", err)
	}
	return json.Unmarshal(list, out)
}
