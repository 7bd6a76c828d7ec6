package model

import (
	"database/sql/driver"
	"encoding/json"

	"taskhub-api/pkg/rbac"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// GrantMap is a role's permission map as stored in a JSON column. Reads
// never fail. A JSON string holding an encoded object is decoded once more;
// anything that still is not a JSON object decodes to an empty map, and
// non-true entries are dropped.
type GrantMap rbac.Grants

func (g *GrantMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*g = GrantMap{}
		return nil
	}

	raw, ok := decodeGrantObject(data)
	if !ok {
		*g = GrantMap{}
		return nil
	}
	out := make(GrantMap, len(raw))
	for k, v := range raw {
		if b, ok := v.(bool); ok && b {
			out[k] = true
		}
	}
	*g = out
	return nil
}

// decodeGrantObject reads a JSON object, unwrapping one level of string
// encoding ("{\"tasks.view\":true}" written as a JSON string).
func decodeGrantObject(data []byte) (map[string]interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	if s, isString := v.(string); isString {
		var inner interface{}
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil, false
		}
		v = inner
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

func (g GrantMap) Value() (driver.Value, error) {
	if g == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(g))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (GrantMap) GormDataType() string {
	return "json"
}

func (GrantMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

// Grants returns the map as evaluator input.
func (g GrantMap) Grants() rbac.Grants {
	return rbac.Grants(g)
}

// JSONMap is a free-form JSON object column. Unreadable values decode to nil.
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*m = nil
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		*m = nil
		return nil
	}
	*m = out
	return nil
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (JSONMap) GormDataType() string {
	return "json"
}

func (JSONMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
