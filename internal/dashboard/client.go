package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finboard/finboard/internal/generator"
)

// FetchError describes a failed dataset fetch and whether a retry is
// worthwhile.
type FetchError struct {
	Endpoint  string
	Status    int
	Retriable bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRetriable reports whether err is a transient failure: transport
// trouble, timeouts and 5xx class responses. Validation rejections and
// unknown categories are not.
func IsRetriable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retriable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Client fetches datasets over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a dataset client. The timeout bounds each whole
// request, body included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Metric fetches the scalar for one metric category.
func (c *Client) Metric(ctx context.Context, cat generator.MetricCategory) (float64, error) {
	var body struct {
		Value float64 `json:"value"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/metrics/%s", c.baseURL, cat), &body); err != nil {
		return 0, err
	}
	return body.Value, nil
}

// Rows fetches the first rows records of a collection. The server clamps
// the count to its ceiling, so the returned slice may be shorter than
// asked.
func (c *Client) Rows(ctx context.Context, cat generator.RowCategory, rows int) ([]Record, error) {
	var body struct {
		Records []Record `json:"records"`
	}
	endpoint := fmt.Sprintf("%s/rows/%s?rows=%d", c.baseURL, cat, rows)
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	return body.Records, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are transient from this side unless the
		// caller walked away.
		return &FetchError{
			Endpoint:  endpoint,
			Retriable: !errors.Is(err, context.Canceled),
			Err:       err,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return &FetchError{
			Endpoint:  endpoint,
			Status:    resp.StatusCode,
			Retriable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	return nil
}
