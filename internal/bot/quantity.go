package bot

import "github.com/shopspring/decimal"

// Quantity is the order size of the next run. It grows after expirations
// and returns to its base value after a fill.
type Quantity struct {
	base  decimal.Decimal
	value decimal.Decimal
}

// NewQuantity returns a Quantity starting at base.
func NewQuantity(base decimal.Decimal) *Quantity {
	return &Quantity{base: base, value: base}
}

func (q *Quantity) Double() {
	q.value = q.value.Mul(decimal.NewFromInt(2))
}

func (q *Quantity) Multiply(multiplier decimal.Decimal) {
	q.value = q.value.Mul(multiplier)
}

// Reset returns the quantity to its base value.
func (q *Quantity) Reset() {
	q.value = q.base
}

func (q *Quantity) Value() decimal.Decimal { return q.value }

func (q *Quantity) String() string { return q.value.String() }
