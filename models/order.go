package models

import "time"

type Order struct {
	ID           int         `json:"id"`
	UserID       int         `json:"user_id"`
	RestaurantID int         `json:"restaurant_id"`
	CreatedAt    time.Time   `json:"created_at"`
	Total        float64     `json:"total"`
	Note         *string     `json:"note,omitempty"`
	Sent         bool        `json:"sent"`
	Lines        []OrderLine `json:"lines,omitempty"`

	// Joined for dispatch and reporting.
	RestaurantName string `json:"restaurant_name,omitempty"`
}

type OrderLine struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	// UnitPrice is the snapshot taken when the line was created, not the
	// product's current price.
	UnitPrice float64 `json:"unit_price"`

	ProductName   string `json:"product_name,omitempty"`
	SupplierID    int    `json:"supplier_id,omitempty"`
	SupplierEmail string `json:"supplier_email,omitempty"`
}

func (l OrderLine) Subtotal() float64 {
	return l.Quantity * l.UnitPrice
}

// SentOrderRow is one flattened line of the admin report over sent orders.
type SentOrderRow struct {
	Restaurant   string    `json:"restaurant"`
	OrderManager string    `json:"order_manager"`
	OrderDate    time.Time `json:"order_date"`
	Product      string    `json:"product"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	LineTotal    float64   `json:"line_total"`
	Note         string    `json:"note"`
}
