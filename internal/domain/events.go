package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedItem struct {
	ProductID   *int64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderPlacedEvent is published after a checkout commits. EventID lets
// consumers recognise redeliveries.
type OrderPlacedEvent struct {
	EventID   string            `json:"event_id"`
	OrderID   int64             `json:"order_id"`
	UserID    int64             `json:"user_id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Items     []OrderPlacedItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	Timestamp time.Time         `json:"timestamp"`
}
