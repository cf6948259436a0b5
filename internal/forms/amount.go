package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not a non-negative number
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount accepts "2000", "$2,000.50" or a number and returns the
// value the payments API expects.
func ParseAmount(v interface{}) (float64, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return 0, err
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}

func parseDecimal(v interface{}) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch val := v.(type) {
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(val))
		if cleaned == "" {
			return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
		}
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		parsed, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		d = parsed
	case decimal.Decimal:
		d = val
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return d, nil
}

// Amount decodes from either a JSON number or a display string like "$2,000"
// and encodes as a plain JSON number.
type Amount struct {
	decimal.Decimal
	set bool
}

// NewAmount wraps a float as an Amount
func NewAmount(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f), set: true}
}

// IsSet reports whether the amount was present in the decoded payload
func (a Amount) IsSet() bool {
	return a.set
}

// Float64 returns the amount rounded to cents
func (a Amount) Float64() float64 {
	f, _ := a.Round(2).Float64()
	return f
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw interface{}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	} else {
		raw = json.Number(data)
	}

	d, err := parseDecimal(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	a.set = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Round(2).String()), nil
}

// Display formats the amount the way the payments table shows it
func (a Amount) Display() string {
	return "$" + a.StringFixed(2)
}
