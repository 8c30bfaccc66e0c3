package core

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase the base currency.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell the base currency.
	SideSell
)

// String returns the OKX wire representation of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	return [...]string{"buy", "sell"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats and rejects anything else;
// silently defaulting would turn an unknown side into a buy.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"buy"`, `"BUY"`:
		*s = SideBuy
	case `"sell"`, `"SELL"`:
		*s = SideSell
	default:
		return NewExchangeError(ErrorTypeValidation, 0,
			fmt.Sprintf("invalid order side %s: must be buy or sell", data))
	}
	return nil
}

// ParseSide converts a side string to an OrderSide.
func ParseSide(s string) (OrderSide, error) {
	switch strings.ToLower(s) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, NewExchangeError(ErrorTypeValidation, 0,
			fmt.Sprintf("invalid order side %q: must be buy or sell", s))
	}
}

// Instrument is a parsed trading pair identifier such as "BTC-USDT".
type Instrument struct {
	// ID is the exchange instrument identifier.
	ID string `json:"inst_id"`
	// Base is the currency being traded (left of the separator).
	Base string `json:"base"`
	// Quote is the currency the price is quoted in (right of the separator).
	Quote string `json:"quote"`
}

// ParseInstrument splits an instrument id into base and quote currencies.
// The id must contain exactly one "-" separator with non-empty halves;
// anything else is rejected before any network call.
func ParseInstrument(id string) (Instrument, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Instrument{}, NewExchangeError(ErrorTypeValidation, 0,
			fmt.Sprintf("invalid instrument id %q: expected BASE-QUOTE", id))
	}
	return Instrument{ID: id, Base: parts[0], Quote: parts[1]}, nil
}

// CurrencyFor returns the currency whose balance funds an order on this
// instrument: the quote currency for buys, the base currency for sells.
func (i Instrument) CurrencyFor(side OrderSide) string {
	if side == SideBuy {
		return i.Quote
	}
	return i.Base
}

// Balance represents the available balance for a single currency at fetch time.
// Snapshots are never cached; a balance is stale immediately after use.
type Balance struct {
	// Currency is the currency code (e.g. "BTC", "USDT").
	Currency string `json:"currency"`
	// Available is the balance available for trading.
	Available apd.Decimal `json:"available"`
}

// OrderRequest contains the parameters required to place a new order.
// Size is kept as the caller's literal decimal string and passed through
// verbatim; lot-size granularity is the exchange's responsibility.
type OrderRequest struct {
	// InstID is the instrument identifier (e.g. "BTC-USDT").
	InstID string `json:"instId"`
	// Side indicates whether this is a buy or sell order.
	Side OrderSide `json:"side"`
	// Size is the order quantity as a decimal string.
	Size string `json:"sz"`
	// OrdType is the OKX order type; defaults to "market".
	OrdType string `json:"ordType"`
	// TdMode is the OKX trade mode; defaults to "cash".
	TdMode string `json:"tdMode"`
}

// Normalize applies the default order type and trade mode for empty fields.
func (r *OrderRequest) Normalize() {
	if r.OrdType == "" {
		r.OrdType = "market"
	}
	if r.TdMode == "" {
		r.TdMode = "cash"
	}
}
