package geoip

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"referral-rewards-backend/internal/common/logger"
)

// Location is the caller's resolved public IP and country.
type Location struct {
	Country string `json:"country"`
	IP      string `json:"ip"`
}

// Unknown is returned whenever the lookup fails. Geo data is informational
// fraud-signal metadata, so failures fall back to a sentinel instead of
// surfacing to the user.
var Unknown = Location{Country: "Unknown", IP: "0.0.0.0"}

type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

func NewClient(endpoint, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		endpoint:   endpoint,
		token:      token,
	}
}

// Lookup resolves the caller's location. It never returns an error.
func (c *Client) Lookup(ctx context.Context) Location {
	url := c.endpoint
	if c.token != "" {
		url += "?token=" + c.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unknown
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("Geo lookup failed")
		return Unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return Unknown
	}
	if loc.Country == "" {
		loc.Country = Unknown.Country
	}
	if loc.IP == "" {
		loc.IP = Unknown.IP
	}
	return loc
}
