package config

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// decimalValue decodes a TOML string, integer or float into an exact
// decimal. Strings are preferred: "1.0005" keeps every digit.
type decimalValue struct {
	decimal.Decimal
}

func mustDecimal(s string) decimalValue {
	return decimalValue{decimal.RequireFromString(s)}
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *decimalValue) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		return d.UnmarshalText([]byte(x))
	case int64:
		d.Decimal = decimal.NewFromInt(x)
	case float64:
		return d.UnmarshalText([]byte(strconv.FormatFloat(x, 'f', -1, 64)))
	default:
		return fmt.Errorf("config: cannot decode %T as a decimal", v)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *decimalValue) UnmarshalText(text []byte) error {
	v, err := decimal.NewFromString(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid decimal %q: %w", text, err)
	}
	d.Decimal = v
	return nil
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d decimalValue) MarshalText() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}
