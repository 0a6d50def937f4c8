// Package chhttp is the HTTP/Arrow-IPC fallback transport: an alternative
// frame carrier for the same columnar data model the native package
// exchanges over TCP. It never touches the native block codec or session
// state machine and is kept free of chnative's dependency surface.
package chhttp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/pkg/errors"
)

// Client issues queries against a ClickHouse server's HTTP interface,
// requesting the Arrow IPC streaming format so the response can be handed
// directly to apache/arrow-go's ipc.Reader.
type Client struct {
	BaseURL  string
	Database string
	User     string
	Password string

	HTTPClient *http.Client
}

// NewClient returns a Client with a default *http.Client, the way
// fetchActiveIncidents's package-level http.Get call is the baseline this
// type generalizes into something reusable and testable.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Query POSTs sql to the server's HTTP endpoint with FORMAT ArrowStream and
// returns the response body wrapped in an Arrow IPC stream reader. The
// caller owns the returned Reader and must call Release when done reading;
// closing resp.Body is the caller's responsibility too, via Reader's
// underlying stream, since ipc.Reader does not close it for you.
func (c *Client) Query(ctx context.Context, sql string) (*ipc.Reader, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "chhttp: parsing base URL")
	}

	q := u.Query()
	q.Set("query", sql+" FORMAT ArrowStream")
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "chhttp: building request")
	}
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "chhttp: request failed")
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	r, err := ipc.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, errors.Wrap(err, "chhttp: opening Arrow IPC stream")
	}
	return r, nil
}

// StatusError reports a non-200 HTTP response from the server. Status is
// the HTTP status line (resp.Status); the response body, which holds
// ClickHouse's own error text, is not read.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chhttp: server responded %d %s", e.Code, e.Status)
}
