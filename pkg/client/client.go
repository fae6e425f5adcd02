package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/Saad0095/leaders-tax-cli/pkg/config"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// UserAgent is sent with every request
const UserAgent = "Leaders-Tax-CLI/0.1.0"

// TokenSource supplies the bearer token, read fresh for each request so a
// login or logout in another process is picked up.
type TokenSource interface {
	Token() (string, error)
}

// Options configures a client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
}

var httpClient *resty.Client

// New builds a resty client that logs requests and attaches the session token.
func New(opts Options) *resty.Client {
	c := resty.New()
	c.SetBaseURL(opts.BaseURL)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	c.SetHeader("User-Agent", UserAgent)
	c.SetHeader("Accept", "application/json")

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())

		if opts.Tokens != nil {
			token, err := opts.Tokens.Token()
			if err != nil {
				logger.Warn("Could not read session token", "error", err)
			} else if token != "" {
				req.SetAuthToken(token)
			}
		}

		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"url", resp.Request.URL,
			"duration", resp.Time(),
		)
		return nil
	})

	return c
}

// Init initializes the shared HTTP client from config
func Init(tokens TokenSource) {
	httpClient = New(Options{
		BaseURL: config.GetString("api.base_url"),
		Timeout: config.APITimeout(),
		Tokens:  tokens,
	})
}

// GetClient returns the shared HTTP client, building an unauthenticated one
// if Init was never called.
func GetClient() *resty.Client {
	if httpClient == nil {
		Init(nil)
	}
	return httpClient
}
