// Package confluence wraps the Confluence REST API surface needed for
// reconciliation: paginated listing of pages with DocFX metadata, page
// creation, optimistic-concurrency content updates, and metadata
// attach/delete. The client owns the HTTP session and basic-auth credentials.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

const apiSuffix = "/rest/api/"

// Client is a Confluence REST API client scoped to one server and one set of
// credentials. All request paths are relative to the normalized base address.
type Client struct {
	httpClient  *http.Client
	baseAddress string
	username    string
	password    string
}

// NewClient creates a Client. The base address is normalized to end with
// /rest/api/ so relative endpoints resolve against the REST root.
func NewClient(baseAddress, username, password string) *Client {
	addr := baseAddress
	if !strings.HasSuffix(addr, apiSuffix) {
		addr = strings.TrimSuffix(addr, "/") + apiSuffix
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseAddress: addr,
		username:    username,
		password:    password,
	}
}

// newRequest builds a request against the REST root. Endpoint is a relative
// path like "content/123/property", optionally with a query string.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError, "invalid endpoint").
			WithContext("endpoint", endpoint)
	}
	base, err := url.Parse(c.baseAddress)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "invalid confluence address").
			WithContext("address", c.baseAddress)
	}
	target := base.ResolveReference(ref)

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError, "failed to marshal request body")
		}
		req, err = http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError, "failed to create request").
				WithContext("url", target.String())
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target.String(), http.NoBody)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError, "failed to create request").
				WithContext("url", target.String())
		}
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doJSON executes a request and decodes the JSON response body into result.
// Confluence reports request failures as JSON payloads (with a "message"
// field) rather than bare status codes, so decoding happens regardless of
// status and the caller inspects the payload. An empty body (DELETE) leaves
// result untouched.
func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryNetwork, errors.SeverityError, "confluence request failed").
			WithContext("method", req.Method).
			WithContext("url", req.URL.String())
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryNetwork, errors.SeverityError, "failed to read confluence response").
			WithContext("url", req.URL.String())
	}
	if len(data) == 0 || result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return errors.Wrap(err, errors.CategoryConfluence, errors.SeverityError, "failed to decode confluence response").
			WithContext("url", req.URL.String()).
			WithContext("status", resp.Status)
	}
	return nil
}
