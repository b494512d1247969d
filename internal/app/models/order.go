package models

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a pharmacy checkout. Its invoice is generated from the order lines.
type Order struct {
	ID           int64       `json:"id"`
	PatientID    int64       `json:"patientId"`
	PharmacistID *int64      `json:"pharmacistId,omitempty"`
	Status       OrderStatus `json:"status"`
	Lines        []OrderLine `json:"lines"`
	TimeModel
}

type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	Medicine  string          `json:"medicine"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}
