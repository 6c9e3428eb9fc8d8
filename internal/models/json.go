package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// IndicatorValues maps a country or region code to an indicator value and is
// stored as jsonb.
type IndicatorValues map[string]float64

// Value implements the driver.Valuer interface
func (v IndicatorValues) Value() (driver.Value, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]float64(v))
}

// Scan implements the sql.Scanner interface
func (v *IndicatorValues) Scan(value interface{}) error {
	var data []byte
	switch val := value.(type) {
	case []byte:
		data = val
	case string:
		data = []byte(val)
	case nil:
		*v = IndicatorValues{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into IndicatorValues", value)
	}

	values := map[string]float64{}
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*v = values
	return nil
}

// Lookup returns the value for key when it is present and non-zero. The World
// Bank reports unknown values as null, which never reach the map, and zero is
// never a usable divisor.
func (v IndicatorValues) Lookup(key string) (float64, bool) {
	val, ok := v[key]
	if !ok || val == 0 {
		return 0, false
	}
	return val, true
}

// UnmarshalJSON sets the JSON encoding
func (v *IndicatorValues) UnmarshalJSON(data []byte) error {
	if v == nil {
		return errors.New("nil pointer")
	}
	values := map[string]float64{}
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*v = values
	return nil
}
