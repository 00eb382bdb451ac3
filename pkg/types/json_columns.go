package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ServiceBundles represents the negotiated service toggles (printing,
// installation, monitoring, ...) persisted as JSONB.
type ServiceBundles map[string]bool

// Value marshals the map into JSON for Postgres.
func (s ServiceBundles) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (s *ServiceBundles) Scan(value interface{}) error {
	raw, err := jsonColumnBytes("service bundles", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	result := make(ServiceBundles)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}

// PricingMap holds duration-keyed asset pricing, e.g. {"1_month": 5000}.
// Values are whole currency units as persisted by the listing flow.
type PricingMap map[string]float64

// Value marshals the map into JSON for Postgres.
func (p PricingMap) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (p *PricingMap) Scan(value interface{}) error {
	raw, err := jsonColumnBytes("pricing map", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}
	result := make(PricingMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*p = result
	return nil
}

// StringList persists an ordered list of strings (photo URLs) as JSONB.
type StringList []string

// Value marshals the list into JSON for Postgres.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (l *StringList) Scan(value interface{}) error {
	raw, err := jsonColumnBytes("string list", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	var result StringList
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}

func jsonColumnBytes(label string, value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unsupported scan type %T", label, value)
	}
}
