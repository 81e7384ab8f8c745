package models

// RawParameters are trading parameters exactly as the user typed them.
type RawParameters struct {
	Symbol    string `json:"symbol" default:"EURUSD=X"`
	StartDate string `json:"startDate" default:"2022-01-01"`
	EndDate   string `json:"endDate" default:"2023-01-01"`
	Threshold string `json:"threshold" default:"0.002"`
}

// TradingParameters are validated, coerced parameters sent to the prediction service.
type TradingParameters struct {
	Symbol    string  `json:"symbol"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Threshold float64 `json:"threshold"`
}
