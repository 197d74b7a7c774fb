package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Skill struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level,omitempty"`
	Years int    `json:"years,omitempty"`
}

// Skills is persisted as a json text column.
type Skills []Skill

func (t Skills) Value() (driver.Value, error) {
	if t == nil {
		t = Skills{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *Skills) Scan(v interface{}) error {
	if v == nil {
		*c = Skills{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		*c = Skills{}
		return nil
	}
	return json.Unmarshal([]byte(jsonString), c)
}
