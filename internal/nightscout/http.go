package nightscout

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the part of an HTTP response the client looks at
type Response struct {
	StatusCode int
	Body       []byte
}

// Doer performs a single HTTP request
type Doer interface {
	Do(ctx context.Context, method, url string, headers map[string]string) (*Response, error)
}

// RestyDoer is a Doer backed by a resty client
type RestyDoer struct {
	client *resty.Client
}

// NewRestyDoer creates a Doer. A zero timeout leaves requests unbounded.
func NewRestyDoer(timeout time.Duration) *RestyDoer {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &RestyDoer{client: client}
}

// Do executes the request and returns the status code and raw body
func (d *RestyDoer) Do(ctx context.Context, method, url string, headers map[string]string) (*Response, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Execute(method, url)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}

// Close releases idle connections held by the client
func (d *RestyDoer) Close() {
	d.client.GetClient().CloseIdleConnections()
}
