package okx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okxtrader/pkg/core"
)

type fixedClock struct {
	ts string
}

func (f fixedClock) Now(_ context.Context) (string, error) {
	return f.ts, nil
}

func testCredentials() *core.Credentials {
	return &core.Credentials{APIKey: "test-key", SecretKey: testSecret, Passphrase: "test-pass"}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	config := core.DefaultConfig().
		WithBaseURL(baseURL).
		WithCredentials(testCredentials())

	opts = append([]Option{WithClock(fixedClock{ts: testTimestamp})}, opts...)
	client, err := New(config, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

const balancePayload = `{"code":"0","msg":"","data":[{"details":[` +
	`{"ccy":"USDT","availBal":"50","bal":"50","frozenBal":"0"},` +
	`{"ccy":"ETH","availBal":"1","bal":"1.5","frozenBal":"0.5"}]}]}`

func TestNew_InvalidConfig(t *testing.T) {
	client, err := New(&core.Config{})
	require.Error(t, err)
	require.Nil(t, client)
}

func TestDo_SignsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathBalance, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("OK-ACCESS-KEY"))
		assert.Equal(t, testTimestamp, r.Header.Get("OK-ACCESS-TIMESTAMP"))
		assert.Equal(t, "test-pass", r.Header.Get("OK-ACCESS-PASSPHRASE"))
		assert.Equal(t, "0", r.Header.Get("x-simulated-trading"))

		want := Sign(testSecret, testTimestamp, http.MethodGet, pathBalance, "")
		assert.Equal(t, want, r.Header.Get("OK-ACCESS-SIGN"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(balancePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, balancePayload, string(raw))
}

func TestDo_SimulatedHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("x-simulated-trading"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer server.Close()

	config := core.DefaultConfig().
		WithBaseURL(server.URL).
		WithCredentials(testCredentials()).
		WithSimulated(true)

	client, err := New(config, WithClock(fixedClock{ts: testTimestamp}))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Balance(context.Background())
	require.NoError(t, err)
}

func TestDo_MissingCredentialsBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	config := core.DefaultConfig().
		WithBaseURL(server.URL).
		WithCredentials(&core.Credentials{APIKey: "only-key"})

	client, err := New(config, WithClock(fixedClock{ts: testTimestamp}))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Balance(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Equal(t, int32(0), requests.Load())
}

func TestDo_ExchangeErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"50111","msg":"Invalid OK-ACCESS-KEY"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Balance(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsAuthenticationError(err))

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "50111", exErr.Code)
	assert.Equal(t, "Invalid OK-ACCESS-KEY", exErr.Message)
	assert.Contains(t, exErr.RawBody, "50111")
}

func TestDo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Balance(context.Background())
	require.Error(t, err)

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, core.ErrorTypeServerError, exErr.Type)
	assert.Equal(t, http.StatusInternalServerError, exErr.StatusCode)
}

func TestDo_NonSuccessStatusIsError(t *testing.T) {
	// 300 is not auto-followed by the transport and must not pass as success.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Balance(context.Background())
	require.Error(t, err)

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, http.StatusMultipleChoices, exErr.StatusCode)
	assert.True(t, core.IsTransportError(err))
}

func TestBalanceSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(balancePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	balances, err := client.BalanceSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "USDT", balances[0].Currency)
	assert.Equal(t, "50", balances[0].Available.String())
	assert.Equal(t, "ETH", balances[1].Currency)
	assert.Equal(t, "1", balances[1].Available.String())
}

func TestAvailableBalance_Match(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(balancePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	avail, err := client.AvailableBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, "50", avail.String())
}

func TestAvailableBalance_AbsentCurrencyIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(balancePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	avail, err := client.AvailableBalance(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.True(t, avail.IsZero())
}

func TestAvailableBalance_EmptySnapshotIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	avail, err := client.AvailableBalance(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, avail.IsZero())
}

func TestTicker_SignsPathWithQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathTicker, r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("instId"))

		want := Sign(testSecret, testTimestamp, http.MethodGet, pathTicker+"?instId=BTC-USDT", "")
		assert.Equal(t, want, r.Header.Get("OK-ACCESS-SIGN"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","data":[{"instId":"BTC-USDT","last":"65000"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Ticker(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "65000")
}

func TestCandles_DefaultableBarInPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathCandles, r.URL.Path)
		assert.Equal(t, "ETH-USDT", r.URL.Query().Get("instId"))
		assert.Equal(t, "1H", r.URL.Query().Get("bar"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Candles(context.Background(), "ETH-USDT", "1H")
	require.NoError(t, err)
}

func TestPlaceOrder_BodyBytesMatchSignature(t *testing.T) {
	wantBody := `{"instId":"BTC-USDT","tdMode":"cash","side":"buy","ordType":"market","sz":"0.001"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathPlaceOrder, r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, wantBody, string(body))

		want := Sign(testSecret, testTimestamp, http.MethodPost, pathPlaceOrder, string(body))
		assert.Equal(t, want, r.Header.Get("OK-ACCESS-SIGN"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","data":[{"ordId":"312269865356374016"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	req := &core.OrderRequest{InstID: "BTC-USDT", Side: core.SideBuy, Size: "0.001"}
	raw, err := client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "312269865356374016")
}

func TestPlaceOrder_AppliesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"tdMode":"cash"`)
		assert.Contains(t, string(body), `"ordType":"market"`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	req := &core.OrderRequest{InstID: "ETH-USDT", Side: core.SideSell, Size: "0.01"}
	_, err := client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
}

func TestServerClockIsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case pathServerTime:
			_, _ = w.Write([]byte(`{"code":"0","data":[{"ts":"1717763696789"}]}`))
		case pathBalance:
			assert.Equal(t, testTimestamp, r.Header.Get("OK-ACCESS-TIMESTAMP"))
			_, _ = w.Write([]byte(balancePayload))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	config := core.DefaultConfig().
		WithBaseURL(server.URL).
		WithCredentials(testCredentials())

	client, err := New(config)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Balance(context.Background())
	require.NoError(t, err)
}
