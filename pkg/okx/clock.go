package okx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"okxtrader/internal/transport"
	"okxtrader/pkg/core"
)

// timestampLayout is the ISO-8601 millisecond UTC format OKX requires in
// signatures. Go's .000 verb truncates to three fractional digits.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Clock supplies exchange-acceptable signature timestamps.
type Clock interface {
	// Now returns the current timestamp formatted for request signing.
	Now(ctx context.Context) (string, error)
}

// ServerClock fetches the exchange's authoritative time from the public time
// endpoint. There is deliberately no local-clock fallback: a locally derived
// timestamp may fall outside the exchange's skew tolerance and get every
// signed request rejected.
type ServerClock struct {
	http   *transport.Client
	logger zerolog.Logger
}

// NewServerClock creates a ServerClock using the given transport.
func NewServerClock(http *transport.Client, logger zerolog.Logger) *ServerClock {
	return &ServerClock{http: http, logger: logger}
}

// Now fetches the server epoch-millisecond time and formats it as
// ISO-8601 millisecond UTC.
func (c *ServerClock) Now(ctx context.Context) (string, error) {
	resp, err := c.http.Get(ctx, pathServerTime)
	if err != nil {
		return "", core.NewExchangeError(core.ErrorTypeNetwork, 0,
			fmt.Sprintf("fetch server time: %v", err))
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", core.NewExchangeError(core.ErrorTypeServerError, resp.StatusCode(),
			"fetch server time: "+resp.Status()).WithRawBody(resp.String())
	}

	var env serverTimeResponse
	if err := sonic.Unmarshal(resp.Bytes(), &env); err != nil {
		return "", core.NewExchangeError(core.ErrorTypeServerError, resp.StatusCode(),
			fmt.Sprintf("parse server time: %v", err))
	}
	if len(env.Data) == 0 {
		return "", core.NewExchangeError(core.ErrorTypeServerError, resp.StatusCode(),
			"server time response has no data")
	}

	ms, err := strconv.ParseInt(env.Data[0].TS, 10, 64)
	if err != nil {
		return "", core.NewExchangeError(core.ErrorTypeServerError, resp.StatusCode(),
			fmt.Sprintf("parse server timestamp %q: %v", env.Data[0].TS, err))
	}

	ts := time.UnixMilli(ms).UTC().Format(timestampLayout)
	c.logger.Debug().Str("timestamp", ts).Msg("server time")
	return ts, nil
}

// FormatTimestamp converts an epoch-millisecond value to the signature
// timestamp format.
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}
