package webapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SerializePolicy приводит policy к строке для хранения.
//
// nil -> "". Строки, []byte и json.RawMessage проверяются и сохраняются как есть,
// остальные значения (map, struct) сериализуются через encoding/json.
// Непустая policy должна быть JSON-объектом; JSON null равносилен отсутствию policy.
func SerializePolicy(policy any) (string, error) {
	var raw []byte

	switch p := policy.(type) {
	case nil:
		return "", nil
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	case json.RawMessage:
		raw = p
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
		raw = data
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	if !json.Valid(trimmed) {
		return "", fmt.Errorf("%w: malformed json", ErrInvalidPolicy)
	}
	if trimmed[0] != '{' {
		return "", fmt.Errorf("%w: must be a json object", ErrInvalidPolicy)
	}

	return string(trimmed), nil
}

// ParsePolicy разбирает сохраненную policy. Пустая строка дает nil map.
func ParsePolicy(policy string) (map[string]any, error) {
	if policy == "" {
		return nil, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(policy), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return out, nil
}
