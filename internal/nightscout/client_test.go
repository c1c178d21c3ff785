package nightscout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcode/nightscout-panel/internal/models"
)

// recordingDoer captures the last request and replies with a canned response
type recordingDoer struct {
	url     string
	headers map[string]string
	resp    *Response
	err     error
}

func (d *recordingDoer) Do(_ context.Context, _, url string, headers map[string]string) (*Response, error) {
	d.url = url
	d.headers = headers
	return d.resp, d.err
}

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("count") != "1" {
			t.Errorf("count = %q, want 1", r.URL.Query().Get("count"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		endpoint string
		expected string
	}{
		{"plain", "https://ns.example.com", "/api/v1/entries/sgv?count=1", "https://ns.example.com/api/v1/entries/sgv?count=1"},
		{"trailing slash", "https://ns.example.com/", "/api/v1/entries/sgv?count=1", "https://ns.example.com/api/v1/entries/sgv?count=1"},
		{"http scheme kept", "http://ns.local:1337/", "/api/v1/devicestatus?count=1", "http://ns.local:1337/api/v1/devicestatus?count=1"},
		{"nested doubles", "https://ns.example.com//sub//", "/api/v1/devicestatus?count=1", "https://ns.example.com/sub/api/v1/devicestatus?count=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildURL(tt.host, tt.endpoint))
		})
	}
}

func TestClient_Headers(t *testing.T) {
	doer := &recordingDoer{resp: &Response{StatusCode: http.StatusOK, Body: []byte(`[]`)}}
	client := NewClient(doer)

	_, err := client.FetchCurrentReading(context.Background(), "https://ns.example.com/", "tok3n")
	require.NoError(t, err)

	assert.Equal(t, "https://ns.example.com/api/v1/entries/sgv?count=1", doer.url)
	assert.Equal(t, "application/json", doer.headers["accept"])
	assert.Equal(t, "tok3n", doer.headers["api-secret"])

	_, err = client.FetchDeviceStatus(context.Background(), "https://ns.example.com", "")
	require.NoError(t, err)

	_, hasSecret := doer.headers["api-secret"]
	assert.False(t, hasSecret, "api-secret must be omitted for an empty token")
}

func TestClient_FetchCurrentReading(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/api/v1/entries/sgv": `[{"_id":"a","sgv":100,"direction":"Flat","date":1700000000000,"type":"sgv"}]`,
	})

	client := NewClient(NewRestyDoer(0))
	reading, err := client.FetchCurrentReading(context.Background(), server.URL, "")

	require.NoError(t, err)
	assert.Equal(t, &models.Reading{
		ID:          "a",
		SGV:         100,
		Trend:       models.TrendFlat,
		TimestampMs: 1700000000000,
	}, reading)
}

func TestClient_FetchCurrentReading_Empty(t *testing.T) {
	server := newTestServer(t, map[string]string{"/api/v1/entries/sgv": `[]`})

	client := NewClient(NewRestyDoer(0))
	reading, err := client.FetchCurrentReading(context.Background(), server.URL, "")

	require.NoError(t, err)
	assert.Nil(t, reading)
	assert.True(t, reading.IsEmpty())
}

func TestClient_FetchCurrentReading_WithoutID(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/api/v1/entries/sgv": `[{"sgv":100,"direction":"Flat","date":1700000000000}]`,
	})

	client := NewClient(NewRestyDoer(0))
	reading, err := client.FetchCurrentReading(context.Background(), server.URL, "")

	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.False(t, reading.IsEmpty())
	assert.Empty(t, reading.ID)
	assert.Equal(t, 100, reading.SGV)
	assert.Equal(t, models.TrendFlat, reading.Trend)
}

func TestClient_FetchCurrentReading_ExponentDate(t *testing.T) {
	doer := &recordingDoer{resp: &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`[{"_id":"a","sgv":100.4,"direction":"Flat","date":1.7e12}]`),
	}}
	client := NewClient(doer)

	reading, err := client.FetchCurrentReading(context.Background(), "https://ns.example.com", "")

	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), reading.TimestampMs)
	assert.Equal(t, 100, reading.SGV)
}

func TestClient_SendsSecretHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-secret") != "mysecret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(NewRestyDoer(0))
	_, err := client.FetchDeviceStatus(context.Background(), server.URL, "mysecret")
	require.NoError(t, err)
}

func TestClient_FetchDeviceStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		device  string
		battery *int
	}{
		{"full", `[{"device":"Phone","uploader":{"battery":80,"type":"PHONE"}}]`, "Phone", intPtr(80)},
		{"zero battery is present", `[{"device":"Phone","uploader":{"battery":0}}]`, "Phone", intPtr(0)},
		{"uploader without battery", `[{"device":"Phone","uploader":{}}]`, "Phone", nil},
		{"no uploader", `[{"device":"openaps://pump"}]`, "openaps://pump", nil},
		{"empty array", `[]`, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, map[string]string{"/api/v1/devicestatus": tt.body})

			client := NewClient(NewRestyDoer(0))
			status, err := client.FetchDeviceStatus(context.Background(), server.URL, "")

			require.NoError(t, err)
			assert.Equal(t, tt.device, status.DeviceName)
			assert.Equal(t, tt.battery, status.UploaderBatteryPct)
		})
	}
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
	}))
	defer server.Close()

	client := NewClient(NewRestyDoer(0))
	_, err := client.FetchCurrentReading(context.Background(), server.URL, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Equal(t, entriesEndpoint, fetchErr.Endpoint)
}

func TestClient_ParseError(t *testing.T) {
	doer := &recordingDoer{resp: &Response{StatusCode: http.StatusOK, Body: []byte(`{"not":"an array"}`)}}
	client := NewClient(doer)

	_, err := client.FetchDeviceStatus(context.Background(), "https://ns.example.com", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestClient_NetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	client := NewClient(&recordingDoer{err: cause})

	_, err := client.FetchCurrentReading(context.Background(), "https://ns.example.com", "")

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func intPtr(v int) *int {
	return &v
}
