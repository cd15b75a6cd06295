package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a []string as a JSON text column. Decoding happens once
// at the storage boundary instead of ad hoc in every caller.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("models: marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: scan string list: unsupported type %T", src)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	if err := json.Unmarshal(data, (*[]string)(s)); err != nil {
		return fmt.Errorf("models: unmarshal string list: %w", err)
	}
	return nil
}

// FeeMap stores a fee-name → amount mapping as a JSON text column.
type FeeMap map[string]float64

// Value implements driver.Valuer.
func (f FeeMap) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]float64(f))
	if err != nil {
		return nil, fmt.Errorf("models: marshal fee map: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (f *FeeMap) Scan(src interface{}) error {
	if src == nil {
		*f = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: scan fee map: unsupported type %T", src)
	}
	if len(data) == 0 {
		*f = nil
		return nil
	}
	if err := json.Unmarshal(data, (*map[string]float64)(f)); err != nil {
		return fmt.Errorf("models: unmarshal fee map: %w", err)
	}
	return nil
}

// Context stores free-form structured context as a JSON text column.
type Context map[string]interface{}

// Value implements driver.Valuer.
func (c Context) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]interface{}(c))
	if err != nil {
		return nil, fmt.Errorf("models: marshal context: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *Context) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: scan context: unsupported type %T", src)
	}
	if len(data) == 0 {
		*c = nil
		return nil
	}
	if err := json.Unmarshal(data, (*map[string]interface{})(c)); err != nil {
		return fmt.Errorf("models: unmarshal context: %w", err)
	}
	return nil
}
