package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a string slice as a jsonb array so it scans on both
// Postgres and the sqlite driver used in tests.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("string list: marshal %w", err)
	}
	return string(raw), nil
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("string list: unsupported scan type %T", value)
	}
	if raw == "" {
		*s = StringList{}
		return nil
	}
	return json.Unmarshal([]byte(raw), s)
}
