package domain

import "github.com/shopspring/decimal"

// CartLine is a pending (user, product) quantity resolved against the current
// catalog entry.
type CartLine struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
