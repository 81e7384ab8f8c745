// Package prediction calls the remote signal generation service.
package prediction

import (
	"context"
	"strings"

	"FxSignals/internal/domain/models"
	"FxSignals/internal/domain/service"
	"FxSignals/pkg/config"
	xhttp "FxSignals/pkg/http"
)

// Client posts trading parameters to the prediction service.
type Client struct {
	url    string
	client *xhttp.Client
}

// New builds a client from the prediction section of the config.
func New(cfg *config.Config) *Client {
	return NewWithClient(
		cfg.Prediction.BaseURL,
		cfg.Prediction.Path,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Prediction.Timeout)),
	)
}

// NewWithClient builds a client on an existing HTTP client.
func NewWithClient(baseURL, path string, hc *xhttp.Client) *Client {
	return &Client{
		url:    strings.TrimRight(baseURL, "/") + path,
		client: hc,
	}
}

// URL returns the endpoint being called.
func (c *Client) URL() string {
	return c.url
}

// GenerateSignals sends one request. Non-2xx replies are returned, not treated as errors;
// failing to get any reply yields a transport *models.SignalError.
func (c *Client) GenerateSignals(ctx context.Context, p models.TradingParameters) (*service.PredictionResponse, error) {
	resp, err := c.client.SendAndRead(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.url,
		Body:   p,
	})
	if err != nil {
		return nil, models.NewTransportError(err)
	}
	return &service.PredictionResponse{Status: resp.StatusCode, Body: resp.Body}, nil
}

var _ service.PredictionService = (*Client)(nil)
