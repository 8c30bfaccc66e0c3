// Package order implements the order placement workflow: a pre-trade balance
// check that, on insufficient funds, negotiates a reduced size through an
// interactive confirmation step before submitting.
package order

import (
	"context"
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"okxtrader/pkg/core"
)

// DefaultRetrySize is the suggested replacement size offered during negotiation.
const DefaultRetrySize = "0.001"

// State represents a step in the order placement workflow.
type State int

// Workflow states. CheckingBalance through AwaitingInput are read-only;
// Submitting is the single state that places an order.
const (
	StateCheckingBalance State = iota
	StateSufficient
	StateInsufficient
	StateAwaitingInput
	StateSubmitting
	StateDone
	StateCancelled
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	return [...]string{
		"CHECKING_BALANCE",
		"SUFFICIENT",
		"INSUFFICIENT",
		"AWAITING_USER_INPUT",
		"SUBMITTING",
		"DONE",
		"CANCELLED",
		"FAILED",
	}[s]
}

// BalanceSource resolves the available amount of a currency at call time.
type BalanceSource interface {
	AvailableBalance(ctx context.Context, currency string) (*apd.Decimal, error)
}

// Placer submits an order to the exchange and returns its response verbatim.
type Placer interface {
	PlaceOrder(ctx context.Context, req *core.OrderRequest) ([]byte, error)
}

// Prompt describes an insufficient-balance shortfall presented to the user.
type Prompt struct {
	// Currency is the currency whose balance fell short.
	Currency string `json:"currency"`
	// Available is the currently available amount.
	Available string `json:"available"`
	// RequestedSize is the size the caller asked for.
	RequestedSize string `json:"requested_size"`
	// DefaultSize is the suggested replacement size.
	DefaultSize string `json:"default_size"`
}

// Message renders the shortfall as a human-readable confirmation question.
func (p Prompt) Message() string {
	return fmt.Sprintf("available %s balance is %s, order size %s exceeds it; try a smaller size?",
		p.Currency, p.Available, p.RequestedSize)
}

// Decision is the outcome of a negotiation round.
type Decision struct {
	// Accepted is true when the user responded to the prompt rather than dismissing it.
	Accepted bool `json:"accepted"`
	// TryAgain is true when the user wants to retry with a smaller size.
	TryAgain bool `json:"tryAgain"`
	// NewSize is the literal replacement size; empty falls back to the prompt default.
	NewSize string `json:"newSize"`
}

// Negotiator is the interactive confirmation collaborator. Confirm suspends
// the workflow until the user responds; the workflow places no order while
// waiting.
type Negotiator interface {
	Confirm(ctx context.Context, prompt Prompt) (Decision, error)
}

// Outcome is the terminal result of a workflow run. Cancelled and Failed are
// legitimate results, not errors: the workflow ran correctly and chose not to
// place an order.
type Outcome struct {
	// State is the terminal state: Done, Cancelled, or Failed.
	State State `json:"state"`
	// Response holds the exchange's verbatim order response when State is Done.
	Response []byte `json:"response,omitempty"`
	// Reason carries the sentinel string for Cancelled and Failed outcomes.
	Reason string `json:"reason,omitempty"`
}

// Workflow orchestrates balance check, optional negotiation, and submission.
// A Workflow instance holds no per-order state and may run concurrently, but
// a single run performs at most one in-flight negotiation.
type Workflow struct {
	balances BalanceSource
	placer   Placer
	logger   zerolog.Logger
}

// Option is a functional option for configuring the Workflow.
type Option func(*Workflow)

// WithLogger returns an option that sets the workflow logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workflow) {
		w.logger = l
	}
}

// New creates a Workflow over the given balance source and order placer.
func New(balances BalanceSource, placer Placer, opts ...Option) *Workflow {
	w := &Workflow{
		balances: balances,
		placer:   placer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute runs the order workflow to a terminal outcome.
//
// The requested size is compared against the available balance of the quote
// currency for buys and the base currency for sells. When the size exceeds
// the balance and a negotiator is present, the workflow suspends for exactly
// one confirmation round; an accepted replacement size is submitted without a
// second balance check. Without a negotiator the workflow fails without
// guessing a smaller size.
//
// Errors are returned only for configuration, validation, and transport
// failures; Cancelled and Failed are ordinary outcomes.
func (w *Workflow) Execute(ctx context.Context, req *core.OrderRequest, negotiator Negotiator) (*Outcome, error) {
	inst, err := core.ParseInstrument(req.InstID)
	if err != nil {
		return nil, err
	}
	req.Normalize()

	var size apd.Decimal
	if _, _, err := apd.BaseContext.SetString(&size, req.Size); err != nil {
		return nil, core.NewExchangeError(core.ErrorTypeValidation, 0,
			fmt.Sprintf("invalid order size %q", req.Size))
	}

	currency := inst.CurrencyFor(req.Side)

	w.logState(StateCheckingBalance, req, "")
	available, err := w.balances.AvailableBalance(ctx, currency)
	if err != nil {
		return nil, err
	}

	if size.Cmp(available) <= 0 {
		w.logState(StateSufficient, req, currency)
		return w.submit(ctx, req)
	}

	w.logState(StateInsufficient, req, currency)
	prompt := Prompt{
		Currency:      currency,
		Available:     available.String(),
		RequestedSize: req.Size,
		DefaultSize:   DefaultRetrySize,
	}

	if negotiator == nil {
		w.logState(StateFailed, req, currency)
		return &Outcome{
			State: StateFailed,
			Reason: fmt.Sprintf("[FAILED] insufficient balance, available %s is %s",
				currency, prompt.Available),
		}, nil
	}

	w.logState(StateAwaitingInput, req, currency)
	decision, err := negotiator.Confirm(ctx, prompt)
	if err != nil || !decision.Accepted || !decision.TryAgain {
		// Any response other than an explicit accept-and-retry cancels.
		w.logState(StateCancelled, req, currency)
		return &Outcome{
			State:  StateCancelled,
			Reason: "[CANCELLED] insufficient balance, order canceled",
		}, nil
	}

	req.Size = decision.NewSize
	if req.Size == "" {
		req.Size = prompt.DefaultSize
	}

	// Single negotiation round: the replacement size is submitted without
	// re-checking the balance.
	return w.submit(ctx, req)
}

func (w *Workflow) submit(ctx context.Context, req *core.OrderRequest) (*Outcome, error) {
	w.logState(StateSubmitting, req, "")
	resp, err := w.placer.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	w.logState(StateDone, req, "")
	return &Outcome{State: StateDone, Response: resp}, nil
}

func (w *Workflow) logState(state State, req *core.OrderRequest, currency string) {
	evt := w.logger.Debug().
		Str("state", state.String()).
		Str("instId", req.InstID).
		Str("side", req.Side.String()).
		Str("sz", req.Size)
	if currency != "" {
		evt = evt.Str("currency", currency)
	}
	evt.Msg("order workflow")
}
