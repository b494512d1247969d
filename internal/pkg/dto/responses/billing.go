package responses

import "github.com/shopspring/decimal"

type Amount struct {
	Total decimal.Decimal `json:"total"`
}

type Revenue struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Total decimal.Decimal `json:"total"`
}

type PaymentPlanOverview struct {
	ActiveCount      int             `json:"active_count"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}
