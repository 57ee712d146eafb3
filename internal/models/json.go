package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON is a map column serialized as JSON text, used for audit snapshots and
// notification payloads.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("models: unsupported JSON column type")
	}
	return json.Unmarshal(data, j)
}
