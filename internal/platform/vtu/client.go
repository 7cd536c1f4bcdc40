package vtu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"referral-rewards-backend/internal/common/errors"
)

// Client talks to the VTU top-up provider. All three endpoints are GET with
// query parameters, authenticated with Basic auth; the provider additionally
// expects the credentials repeated in the query string.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

// TopUpResponse is the provider reply for airtime and data credits.
type TopUpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type balanceResponse struct {
	Data struct {
		Balance float64 `json:"balance"`
	} `json:"data"`
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		username:   username,
		password:   password,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("username", c.username)
	params.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()), nil)
	if err != nil {
		return errors.NewExternalAPIError("vtu", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalAPIError("vtu", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewExternalAPIError("vtu",
			fmt.Errorf("%s: unexpected status %s", endpoint, resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewExternalAPIError("vtu", fmt.Errorf("%s: decode: %w", endpoint, err))
	}
	return nil
}

// Balance returns the current provider float balance.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	var out balanceResponse
	if err := c.get(ctx, "balance", url.Values{}, &out); err != nil {
		return 0, err
	}
	return out.Data.Balance, nil
}

// Airtime credits airtime to a phone number. A non-success provider reply is
// a hard failure; nothing is swallowed.
func (c *Client) Airtime(ctx context.Context, phone, networkID string, amount float64) (*TopUpResponse, error) {
	params := url.Values{}
	params.Set("phone", phone)
	params.Set("network_id", networkID)
	params.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var out TopUpResponse
	if err := c.get(ctx, "airtime", params, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, errors.NewExternalAPIError("vtu",
			fmt.Errorf("airtime top-up rejected: %s", out.Message))
	}
	return &out, nil
}

// Data credits a data bundle identified by its variation id.
func (c *Client) Data(ctx context.Context, phone, networkID, variationID string) (*TopUpResponse, error) {
	params := url.Values{}
	params.Set("phone", phone)
	params.Set("network_id", networkID)
	params.Set("variation_id", variationID)

	var out TopUpResponse
	if err := c.get(ctx, "data", params, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, errors.NewExternalAPIError("vtu",
			fmt.Errorf("data top-up rejected: %s", out.Message))
	}
	return &out, nil
}
