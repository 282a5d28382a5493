package models

// Requests for the HTTP API. Defined in domain for reuse by handlers and CLI.

type SimulateRequest struct {
	Symbol         string  `query:"symbol" json:"symbol" validate:"required,alphanum,max=10"`
	Days           int     `query:"days" json:"days" default:"90" validate:"gte=30,lte=365"`
	InitialBalance float64 `query:"initial_balance" json:"initial_balance" default:"10000" validate:"gte=1000,lte=1000000"`
}

type BatchSimulateRequest struct {
	Symbols        []string `json:"symbols" validate:"required,min=1,max=20,dive,required,alphanum,max=10"`
	Days           int      `json:"days" default:"90" validate:"gte=30,lte=365"`
	InitialBalance float64  `json:"initial_balance" default:"10000" validate:"gte=1000,lte=1000000"`
}

type SymbolRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,max=10"`
}

type RecentPredictionsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,alphanum,max=10"`
	Limit  int    `query:"limit" json:"limit" default:"5" validate:"gte=1,lte=20"`
}

type PredictionHistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,alphanum,max=10"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}

type StockRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,max=10"`
	Period string `query:"period" default:"3m" validate:"oneof=1m 3m 6m 1y"`
}

// BatchItem is one symbol's outcome inside a batch run.
type BatchItem struct {
	Symbol string            `json:"symbol"`
	Result *SimulationResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Kind   ErrorKind         `json:"kind,omitempty"`
}

// PeriodDays maps a stock period to trading-day lookback.
func PeriodDays(period string) int {
	switch period {
	case "1m":
		return 21
	case "6m":
		return 126
	case "1y":
		return 252
	default:
		return 63
	}
}
