// Package api wraps the Leaders Tax backend REST endpoints.
package api

import (
	"github.com/go-resty/resty/v2"

	"github.com/Saad0095/leaders-tax-cli/pkg/client"
)

// Client issues typed requests against the backend. Every call takes a
// context so a poll can be abandoned when its owner shuts down.
type Client struct {
	http *resty.Client
}

// New wraps an already configured resty client
func New(http *resty.Client) *Client {
	return &Client{http: http}
}

// Default uses the shared client built by client.Init
func Default() *Client {
	return New(client.GetClient())
}
