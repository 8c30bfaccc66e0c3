package core

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the production OKX REST endpoint.
const DefaultBaseURL = "https://www.okx.com"

// Environment variable names read by LoadConfig.
const (
	EnvAPIKey     = "OKX_API_KEY"
	EnvSecretKey  = "OKX_SECRET_KEY"
	EnvPassphrase = "OKX_PASSPHRASE"
	EnvBaseURL    = "OKX_API_BASE"
	EnvSimulated  = "OKX_SIMULATED"
)

// Credentials holds the OKX API credentials. The secret key and passphrase
// are excluded from JSON serialization and never appear in logs.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private key used for request signing.
	SecretKey string `json:"-"`
	// Passphrase is the account API passphrase required by OKX.
	Passphrase string `json:"-"`
}

// Complete returns true when key, secret, and passphrase are all present.
func (c *Credentials) Complete() bool {
	return c != nil && c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// String returns a masked representation safe for logging.
func (c *Credentials) String() string {
	if c == nil {
		return "Credentials{}"
	}
	return fmt.Sprintf("Credentials{APIKey:%s}", maskKey(c.APIKey))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Config contains all configuration options for the OKX client.
type Config struct {
	// BaseURL is the exchange REST endpoint.
	BaseURL string `json:"base_url" validate:"required,url"`
	// Simulated selects paper trading via the x-simulated-trading header.
	// It is always sent explicitly so the environment mode is never ambiguous.
	Simulated   bool         `json:"simulated"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=0"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=0"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults:
// production base URL, 10s timeout, 10 requests per second.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Simulated:         false,
		Timeout:           10 * time.Second,
		RateLimitRequests: 10,
		RateLimitPeriod:   time.Second,
		LogLevel:          "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithSimulated enables or disables simulated trading and returns the config for chaining.
func (c *Config) WithSimulated(simulated bool) *Config {
	c.Simulated = simulated
	return c
}

// WithBaseURL sets the exchange endpoint and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// LoadConfig builds a Config from environment variables, optionally loading
// an env file first. A missing env file is not an error; missing credentials
// are, since the client cannot sign a single request without them.
func LoadConfig(envPath string) (*Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	creds := &Credentials{
		APIKey:     os.Getenv(EnvAPIKey),
		SecretKey:  os.Getenv(EnvSecretKey),
		Passphrase: os.Getenv(EnvPassphrase),
	}
	if !creds.Complete() {
		return nil, NewExchangeError(ErrorTypeConfiguration, 0,
			fmt.Sprintf("missing credentials: %s, %s and %s must all be set",
				EnvAPIKey, EnvSecretKey, EnvPassphrase))
	}

	config := DefaultConfig().WithCredentials(creds)

	if base := os.Getenv(EnvBaseURL); base != "" {
		config.BaseURL = base
	}
	if sim := os.Getenv(EnvSimulated); sim != "" {
		simulated, err := strconv.ParseBool(sim)
		if err != nil {
			return nil, NewExchangeError(ErrorTypeConfiguration, 0,
				fmt.Sprintf("invalid %s value %q", EnvSimulated, sim))
		}
		config.Simulated = simulated
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}
