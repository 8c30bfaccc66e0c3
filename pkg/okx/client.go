// Package okx implements an authenticated client for the OKX v5 REST API.
package okx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"okxtrader/internal/ratelimit"
	"okxtrader/internal/transport"
	"okxtrader/pkg/core"
)

// orderClass is the rate limit class for order placement requests.
const orderClass = "orders"

// Client issues signed requests against a single OKX endpoint with a single
// credential set. Every request is signed with a fresh server timestamp;
// signatures are never reused. The client carries no retry policy.
type Client struct {
	config  *core.Config
	http    *transport.Client
	clock   Clock
	limiter *ratelimit.Limiter
	logger  zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds optional Client dependencies.
type Options struct {
	Logger zerolog.Logger
	Clock  Clock
}

// WithLogger returns an option that sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithClock returns an option that overrides the timestamp source.
func WithClock(c Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// New creates a Client from the given configuration.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	httpClient, err := transport.NewClient(&transport.Config{
		BaseURL: config.BaseURL,
		Timeout: config.Timeout,
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	var limiter *ratelimit.Limiter
	if config.RateLimitRequests > 0 {
		limiter = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	clock := options.Clock
	if clock == nil {
		clock = NewServerClock(httpClient, options.Logger)
	}

	return &Client{
		config:  config,
		http:    httpClient,
		clock:   clock,
		limiter: limiter,
		logger:  options.Logger,
	}, nil
}

// Close releases the underlying transport resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// Do issues a signed request. The requestPath must include any query string,
// since the exact path bytes are part of the signature. The body must be the
// final serialized payload, or empty for requests without one.
func (c *Client) Do(ctx context.Context, method, requestPath, body string) ([]byte, error) {
	if err := checkCredentials(c.config.Credentials); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, core.NewExchangeError(core.ErrorTypeRateLimit, 0,
				fmt.Sprintf("rate limit wait: %v", err))
		}
	}

	ts, err := c.clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	signature := Sign(c.config.Credentials.SecretKey, ts, method, requestPath, body)
	headers := Headers(c.config.Credentials, ts, signature, c.config.Simulated)

	var resp *resty.Response
	switch method {
	case http.MethodGet:
		resp, err = c.http.Get(ctx, requestPath, transport.WithHeaders(headers))
	case http.MethodPost:
		resp, err = c.http.Post(ctx, requestPath, body, transport.WithHeaders(headers))
	default:
		return nil, fmt.Errorf("unsupported http method: %s", method)
	}
	if err != nil {
		return nil, classifyTransportError(method, requestPath, err)
	}

	// Anything outside 2xx is a failure, including the odd 3xx that
	// escapes the transport's redirect handling.
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, parseErrorResponse(resp)
	}

	return resp.Bytes(), nil
}

// Balance fetches the account balance and returns the exchange payload verbatim.
func (c *Client) Balance(ctx context.Context) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, pathBalance, "")
}

// BalanceSnapshot fetches and decodes the account balance into typed entries.
// The snapshot is tied to the account at fetch time and never cached.
func (c *Client) BalanceSnapshot(ctx context.Context) ([]core.Balance, error) {
	raw, err := c.Balance(ctx)
	if err != nil {
		return nil, err
	}

	var env balanceResponse
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	var balances []core.Balance
	for _, account := range env.Data {
		for _, detail := range account.Details {
			b := core.Balance{Currency: detail.Currency}
			if err := parseDecimal(&b.Available, detail.Available); err != nil {
				return nil, fmt.Errorf("parse available balance for %s: %w", detail.Currency, err)
			}
			balances = append(balances, b)
		}
	}
	return balances, nil
}

// AvailableBalance returns the available amount of the given currency.
// A currency with no entry in the snapshot legitimately reports zero; absence
// is not an error.
func (c *Client) AvailableBalance(ctx context.Context, currency string) (*apd.Decimal, error) {
	balances, err := c.BalanceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	for i := range balances {
		if balances[i].Currency == currency {
			return &balances[i].Available, nil
		}
	}
	return new(apd.Decimal), nil
}

// Ticker fetches market data for the instrument and returns the payload verbatim.
func (c *Client) Ticker(ctx context.Context, instID string) ([]byte, error) {
	path := pathTicker + "?instId=" + url.QueryEscape(instID)
	return c.Do(ctx, http.MethodGet, path, "")
}

// Candles fetches candlestick data for the instrument at the given bar
// interval and returns the payload verbatim.
func (c *Client) Candles(ctx context.Context, instID, bar string) ([]byte, error) {
	path := pathCandles + "?instId=" + url.QueryEscape(instID) + "&bar=" + url.QueryEscape(bar)
	return c.Do(ctx, http.MethodGet, path, "")
}

// PlaceOrder submits an order and returns the exchange response verbatim.
// The body is serialized once with a fixed field order so the signed bytes
// match the sent bytes exactly.
func (c *Client) PlaceOrder(ctx context.Context, req *core.OrderRequest) ([]byte, error) {
	req.Normalize()

	if c.limiter != nil {
		if err := c.limiter.WaitClass(ctx, orderClass); err != nil {
			return nil, core.NewExchangeError(core.ErrorTypeRateLimit, 0,
				fmt.Sprintf("order rate limit wait: %v", err))
		}
	}

	body, err := sonic.Marshal(orderBody{
		InstID:  req.InstID,
		TdMode:  req.TdMode,
		Side:    req.Side.String(),
		OrdType: req.OrdType,
		Sz:      req.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order body: %w", err)
	}

	c.logger.Info().
		Str("instId", req.InstID).
		Str("side", req.Side.String()).
		Str("sz", req.Size).
		Str("ordType", req.OrdType).
		Msg("placing order")

	return c.Do(ctx, http.MethodPost, pathPlaceOrder, string(body))
}

func classifyTransportError(method, path string, err error) error {
	errType := core.ErrorTypeNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		errType = core.ErrorTypeTimeout
	}
	return core.NewExchangeError(errType, 0,
		fmt.Sprintf("%s %s: %v", method, path, err))
}

func parseErrorResponse(resp *resty.Response) error {
	errType := core.ErrorTypeBadRequest
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		errType = core.ErrorTypeAuthentication
	case resp.StatusCode() == http.StatusTooManyRequests:
		errType = core.ErrorTypeRateLimit
	case resp.StatusCode() >= 500:
		errType = core.ErrorTypeServerError
	}

	var apiErr apiError
	if err := sonic.Unmarshal(resp.Bytes(), &apiErr); err == nil && apiErr.Code != "" {
		return core.NewExchangeError(errType, resp.StatusCode(), apiErr.Msg).
			WithCode(apiErr.Code).
			WithRawBody(resp.String())
	}
	return core.NewExchangeError(errType, resp.StatusCode(), "HTTP error: "+resp.Status()).
		WithRawBody(resp.String())
}

func parseDecimal(dest *apd.Decimal, s string) error {
	if s == "" {
		*dest = apd.Decimal{}
		return nil
	}

	_, _, err := apd.BaseContext.SetString(dest, s)
	if err != nil {
		return fmt.Errorf("set decimal from string: %w", err)
	}
	return nil
}
