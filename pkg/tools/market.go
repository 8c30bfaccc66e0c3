package tools

import "context"

// marketClient is the slice of the exchange client the market-data tools use.
type marketClient interface {
	Balance(ctx context.Context) ([]byte, error)
	Ticker(ctx context.Context, instID string) ([]byte, error)
	Candles(ctx context.Context, instID, bar string) ([]byte, error)
}

// DefaultBar is the candlestick interval used when the caller omits one.
const DefaultBar = "1H"

// BalanceTool returns the account balance as a JSON string.
type BalanceTool struct {
	client marketClient
}

// NewBalanceTool creates the get_balance tool.
func NewBalanceTool(client marketClient) *BalanceTool {
	return &BalanceTool{client: client}
}

func (t *BalanceTool) Name() string {
	return "get_balance"
}

func (t *BalanceTool) Description() string {
	return "Fetch account balance information. Returns a JSON string with all currency balances."
}

func (t *BalanceTool) InputSchema() []byte {
	return []byte(`{"type": "object", "properties": {}}`)
}

func (t *BalanceTool) Execute(tc *Context) *Result {
	raw, err := t.client.Balance(tc.Ctx)
	if err != nil {
		return errorResult(err)
	}
	out, err := prettyJSON(raw)
	if err != nil {
		return errorResult(err)
	}
	return textResult(out)
}

// TickerInput holds the get_ticker arguments.
type TickerInput struct {
	InstID string `json:"instId" validate:"required"`
}

// TickerTool returns market data for an instrument as a JSON string.
type TickerTool struct {
	client marketClient
}

// NewTickerTool creates the get_ticker tool.
func NewTickerTool(client marketClient) *TickerTool {
	return &TickerTool{client: client}
}

func (t *TickerTool) Name() string {
	return "get_ticker"
}

func (t *TickerTool) Description() string {
	return `Fetch market ticker data for an instrument, e.g. "BTC-USDT". Returns a JSON string.`
}

func (t *TickerTool) InputSchema() []byte {
	return []byte(`{
		"type": "object",
		"required": ["instId"],
		"properties": {
			"instId": {"type": "string", "description": "Instrument id, e.g. BTC-USDT"}
		}
	}`)
}

func (t *TickerTool) Execute(tc *Context) *Result {
	var input TickerInput
	if err := parseInput(tc.Args, &input); err != nil {
		return errorResult(err)
	}

	raw, err := t.client.Ticker(tc.Ctx, input.InstID)
	if err != nil {
		return errorResult(err)
	}
	out, err := prettyJSON(raw)
	if err != nil {
		return errorResult(err)
	}
	return textResult(out)
}

// KlineInput holds the get_kline arguments.
type KlineInput struct {
	InstID string `json:"instId" validate:"required"`
	Bar    string `json:"bar"`
}

// KlineTool returns candlestick data for an instrument as a JSON string.
type KlineTool struct {
	client marketClient
}

// NewKlineTool creates the get_kline tool.
func NewKlineTool(client marketClient) *KlineTool {
	return &KlineTool{client: client}
}

func (t *KlineTool) Name() string {
	return "get_kline"
}

func (t *KlineTool) Description() string {
	return `Fetch candlestick data for an instrument. The bar interval defaults to "1H". Returns a JSON string.`
}

func (t *KlineTool) InputSchema() []byte {
	return []byte(`{
		"type": "object",
		"required": ["instId"],
		"properties": {
			"instId": {"type": "string", "description": "Instrument id, e.g. BTC-USDT"},
			"bar": {"type": "string", "description": "Candlestick interval, default 1H"}
		}
	}`)
}

func (t *KlineTool) Execute(tc *Context) *Result {
	var input KlineInput
	if err := parseInput(tc.Args, &input); err != nil {
		return errorResult(err)
	}
	if input.Bar == "" {
		input.Bar = DefaultBar
	}

	raw, err := t.client.Candles(tc.Ctx, input.InstID, input.Bar)
	if err != nil {
		return errorResult(err)
	}
	out, err := prettyJSON(raw)
	if err != nil {
		return errorResult(err)
	}
	return textResult(out)
}
