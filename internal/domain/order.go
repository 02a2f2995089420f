package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// Checkout commits the whole transition at once, so an order is never observed
// in any other state.
const OrderStatusCompleted OrderStatus = "Completed"

// OrderLine snapshots the product name and price at the moment of purchase.
// ProductID is nil once the product has been deleted from the catalog.
type OrderLine struct {
	ProductID   *int64          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderLine     `json:"items"`
}
