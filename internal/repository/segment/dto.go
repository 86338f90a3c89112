package segment

import (
	"encoding/json"
	"fmt"
	"strconv"

	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
)

// infoToHash converts segment metadata to a map for HSET.
func infoToHash(info domseg.Info, fields []string) (map[string]string, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return map[string]string{
		"docs":        strconv.Itoa(info.Docs()),
		"created_at":  strconv.FormatInt(info.CreatedAt(), 10),
		"fields_json": string(fieldsJSON),
	}, nil
}

// infoFromHash hydrates segment metadata and its field list from an HGETALL result.
func infoFromHash(id string, m map[string]string) (domseg.Info, []string, error) {
	docs, err := strconv.Atoi(m["docs"])
	if err != nil {
		return domseg.Info{}, nil, fmt.Errorf("invalid docs: %w", err)
	}
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domseg.Info{}, nil, fmt.Errorf("invalid created_at: %w", err)
	}

	var fields []string
	if raw := m["fields_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return domseg.Info{}, nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	return domseg.Reconstruct(id, docs, createdAt), fields, nil
}
