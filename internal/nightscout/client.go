// Package nightscout provides a client for interacting with the Nightscout API
package nightscout

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"regexp"

	"github.com/mrcode/nightscout-panel/internal/models"
)

const (
	entriesEndpoint      = "/api/v1/entries/sgv?count=1"
	deviceStatusEndpoint = "/api/v1/devicestatus?count=1"
)

// Collapses repeated slashes that do not follow a scheme colon
var doubleSlash = regexp.MustCompile(`([^:])/{2,}`)

// Client handles communication with the Nightscout API
type Client struct {
	http Doer
}

// NewClient creates a new Nightscout client on top of doer
func NewClient(doer Doer) *Client {
	return &Client{http: doer}
}

// entryPayload is an element of the /entries/sgv response
type entryPayload struct {
	ID        string  `json:"_id"`
	SGV       float64 `json:"sgv"`
	Direction string  `json:"direction"`
	Date      float64 `json:"date"` // Unix milliseconds, sometimes sent in exponent form
}

// deviceStatusPayload is an element of the /devicestatus response
type deviceStatusPayload struct {
	Device   string `json:"device"`
	Uploader *struct {
		Battery *float64 `json:"battery"`
	} `json:"uploader"`
}

// buildURL joins host and endpoint, collapsing doubled separators
func buildURL(host, endpoint string) string {
	return doubleSlash.ReplaceAllString(host+endpoint, "${1}/")
}

// get performs an authenticated GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, host, token, endpoint string) ([]byte, error) {
	headers := map[string]string{
		"accept": "application/json",
	}
	if token != "" {
		headers["api-secret"] = token
	}

	resp, err := c.http.Do(ctx, http.MethodGet, buildURL(host, endpoint), headers)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Kind: ErrTransport, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Kind: ErrTransport}
	}

	return resp.Body, nil
}

// firstElement decodes body as a JSON array of T and returns its first
// element, or nil when the array is empty
func firstElement[T any](endpoint string, body []byte) (*T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: http.StatusOK, Kind: ErrParse, Err: err}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FetchCurrentReading retrieves the most recent sensor glucose value.
// An empty result yields a nil Reading and no error.
func (c *Client) FetchCurrentReading(ctx context.Context, host, token string) (*models.Reading, error) {
	body, err := c.get(ctx, host, token, entriesEndpoint)
	if err != nil {
		return nil, err
	}

	entry, err := firstElement[entryPayload](entriesEndpoint, body)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	return &models.Reading{
		ID:          entry.ID,
		SGV:         int(math.Round(entry.SGV)),
		Trend:       models.TrendDirection(entry.Direction),
		TimestampMs: int64(math.Round(entry.Date)),
	}, nil
}

// FetchDeviceStatus retrieves the latest uploader status
func (c *Client) FetchDeviceStatus(ctx context.Context, host, token string) (*models.DeviceStatus, error) {
	body, err := c.get(ctx, host, token, deviceStatusEndpoint)
	if err != nil {
		return nil, err
	}

	payload, err := firstElement[deviceStatusPayload](deviceStatusEndpoint, body)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return &models.DeviceStatus{}, nil
	}

	status := &models.DeviceStatus{DeviceName: payload.Device}
	if payload.Uploader != nil && payload.Uploader.Battery != nil {
		battery := int(math.Round(*payload.Uploader.Battery))
		status.UploaderBatteryPct = &battery
	}

	return status, nil
}

// Close releases the underlying HTTP client when it holds resources
func (c *Client) Close() {
	if closer, ok := c.http.(interface{ Close() }); ok {
		closer.Close()
	}
}
