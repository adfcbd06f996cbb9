package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"vetblood/internal/platform/config"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// distanceMatrixResponse mirrors the routing API's distancematrix payload.
type distanceMatrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Client calls the routing API for one origin/destination pair per request.
// A circuit breaker keeps a flapping routing API from stalling every
// matching run behind its timeout.
type Client struct {
	http    *resty.Client
	apiKey  string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewClient(cfg config.Geo, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(0)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "routing-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{http: httpClient, apiKey: cfg.APIKey, breaker: breaker, logger: logger}
}

// Distance fetches the driving distance in kilometers.
func (c *Client) Distance(ctx context.Context, from, to domain.Location) (float64, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, from, to)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "routing API unavailable")
		}
		return 0, err
	}
	return result.(float64), nil
}

func (c *Client) fetch(ctx context.Context, from, to domain.Location) (float64, error) {
	var body distanceMatrixResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":       c.apiKey,
			"origins":      fmt.Sprintf("%f,%f", from.Latitude, from.Longitude),
			"destinations": fmt.Sprintf("%f,%f", to.Latitude, to.Longitude),
		}).
		SetResult(&body).
		Get("")
	if err != nil {
		return 0, fmt.Errorf("routing API request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("routing API returned %s", resp.Status())
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("routing API returned empty matrix")
	}
	element := body.Rows[0].Elements[0]
	if element.Status != "" && element.Status != "OK" {
		return 0, fmt.Errorf("routing API element status %s", element.Status)
	}
	return element.Distance.Value / 1000, nil
}
