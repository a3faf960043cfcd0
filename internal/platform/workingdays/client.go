package workingdays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotConfigured  = errors.New("working days lookup is not configured")
	ErrInvalidMonth   = errors.New("month must be between 1 and 12")
	ErrInvalidCountry = errors.New("country code must be two letters")
)

// Client looks up the number of working days in a month for a country.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type response struct {
	NumWorkingDays int `json:"num_working_days"`
}

func (c *Client) WorkingDays(ctx context.Context, countryCode string, month int) (int, error) {
	if c == nil || c.APIKey == "" {
		return 0, ErrNotConfigured
	}
	if month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}
	country := strings.ToLower(strings.TrimSpace(countryCode))
	if len(country) != 2 {
		return 0, ErrInvalidCountry
	}

	query := url.Values{}
	query.Set("country", country)
	query.Set("month", strconv.Itoa(month))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/workingdays?"+query.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("working days request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("working days lookup failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode working days: %w", err)
	}
	return payload.NumWorkingDays, nil
}
