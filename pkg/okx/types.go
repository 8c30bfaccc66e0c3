package okx

// REST request paths. Authenticated calls carry the OK-ACCESS header set;
// the time endpoint is public and unsigned.
const (
	pathServerTime = "/api/v5/public/time"
	pathBalance    = "/api/v5/account/balance"
	pathTicker     = "/api/v5/market/ticker"
	pathCandles    = "/api/v5/market/candles"
	pathPlaceOrder = "/api/v5/trade/order"
)

// apiError is the error envelope OKX returns alongside non-2xx statuses.
type apiError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// serverTimeResponse is the public time endpoint payload.
type serverTimeResponse struct {
	Code string `json:"code"`
	Data []struct {
		TS string `json:"ts"`
	} `json:"data"`
}

// currencyDetail is a single currency entry in the account balance response.
type currencyDetail struct {
	Currency  string `json:"ccy"`
	Available string `json:"availBal"`
	Balance   string `json:"bal"`
	Frozen    string `json:"frozenBal"`
}

// balanceResponse is the account balance envelope. Currency entries live in
// the nested data/details arrays.
type balanceResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Details []currencyDetail `json:"details"`
	} `json:"data"`
}

// orderBody is the order placement payload. Field order is fixed so the
// serialized body is deterministic: the same bytes are signed and sent.
type orderBody struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
}
