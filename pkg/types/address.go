package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is stored as a jsonb column on orders and as flat columns on users.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	Phone         string `json:"phoneNo"`
}

// RequiredFields returns the names of mandatory shipping fields that are blank.
func (a Address) RequiredFields() []string {
	missing := []string{}
	if strings.TrimSpace(a.StreetAddress) == "" {
		missing = append(missing, "streetAddress")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phoneNo")
	}
	return missing
}

// MergeOver fills blank fields from the provided defaults.
func (a Address) MergeOver(defaults Address) Address {
	merged := a
	if strings.TrimSpace(merged.StreetAddress) == "" {
		merged.StreetAddress = defaults.StreetAddress
	}
	if strings.TrimSpace(merged.City) == "" {
		merged.City = defaults.City
	}
	if strings.TrimSpace(merged.State) == "" {
		merged.State = defaults.State
	}
	if strings.TrimSpace(merged.PostalCode) == "" {
		merged.PostalCode = defaults.PostalCode
	}
	if strings.TrimSpace(merged.Country) == "" {
		merged.Country = defaults.Country
	}
	if strings.TrimSpace(merged.Phone) == "" {
		merged.Phone = defaults.Phone
	}
	return merged
}

// Value marshals Address into a jsonb literal.
func (a Address) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("address: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb literal.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
	return json.Unmarshal([]byte(raw), a)
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
