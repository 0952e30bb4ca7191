package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// the frontend reads prices and totals as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type MenuItem struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	CreatedAt time.Time       `db:"created_at" json:"-"`
}

// Timestamp renders as "2006-01-02 15:04:05" in JSON.
type Timestamp time.Time

const TimestampLayout = "2006-01-02 15:04:05"

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(TimestampLayout) + `"`), nil
}

func (t Timestamp) String() string {
	return time.Time(t).Format(TimestampLayout)
}
