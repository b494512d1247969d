package requests

import "github.com/shopspring/decimal"

type CheckoutOrderLine struct {
	Medicine  string          `json:"medicine" validate:"required,max=200"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CheckoutOrder struct {
	PatientID int64               `json:"patient_id" validate:"required,gt=0"`
	Lines     []CheckoutOrderLine `json:"lines" validate:"required,min=1,dive"`
}
