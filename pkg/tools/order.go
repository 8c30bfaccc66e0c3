package tools

import (
	"okxtrader/pkg/core"
	"okxtrader/pkg/order"
)

// CreateOrderInput holds the create_order arguments.
type CreateOrderInput struct {
	InstID  string `json:"instId" validate:"required"`
	Side    string `json:"side" validate:"required,oneof=buy sell"`
	Sz      string `json:"sz" validate:"required"`
	OrdType string `json:"ordType"`
	TdMode  string `json:"tdMode"`
}

// CreateOrderTool places a spot order through the balance-checked workflow.
// Cancelled and Failed workflow outcomes are returned as the tool's output
// string with their sentinel prefixes intact; they are part of the wire
// contract with the host, not errors.
type CreateOrderTool struct {
	workflow *order.Workflow
}

// NewCreateOrderTool creates the create_order tool.
func NewCreateOrderTool(workflow *order.Workflow) *CreateOrderTool {
	return &CreateOrderTool{workflow: workflow}
}

func (t *CreateOrderTool) Name() string {
	return "create_order"
}

func (t *CreateOrderTool) Description() string {
	return "Create a spot order. Checks the available balance first and, when it falls short, " +
		"asks the user to confirm a smaller size before submitting."
}

func (t *CreateOrderTool) InputSchema() []byte {
	return []byte(`{
		"type": "object",
		"required": ["instId", "side", "sz"],
		"properties": {
			"instId": {"type": "string", "description": "Instrument id, e.g. BTC-USDT"},
			"side": {"type": "string", "enum": ["buy", "sell"], "description": "Order direction"},
			"sz": {"type": "string", "description": "Order size as a decimal string"},
			"ordType": {"type": "string", "description": "Order type, default market"},
			"tdMode": {"type": "string", "description": "Trade mode, default cash"}
		}
	}`)
}

func (t *CreateOrderTool) Execute(tc *Context) *Result {
	var input CreateOrderInput
	if err := parseInput(tc.Args, &input); err != nil {
		return errorResult(err)
	}

	side, err := core.ParseSide(input.Side)
	if err != nil {
		return errorResult(err)
	}

	req := &core.OrderRequest{
		InstID:  input.InstID,
		Side:    side,
		Size:    input.Sz,
		OrdType: input.OrdType,
		TdMode:  input.TdMode,
	}

	outcome, err := t.workflow.Execute(tc.Ctx, req, tc.Negotiator)
	if err != nil {
		return errorResult(err)
	}

	if outcome.State != order.StateDone {
		return textResult(outcome.Reason)
	}

	out, err := prettyJSON(outcome.Response)
	if err != nil {
		return errorResult(err)
	}
	return textResult(out)
}
