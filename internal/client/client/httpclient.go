package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/netx"
)

const DefaultHealthPath = "/api/health"

type HTTPClient struct {
	baseURL    *url.URL
	healthPath string
	http       *http.Client
}

// NewHTTPClient returns a client for the remote at baseURL. A zero timeout
// disables the per-request deadline.
func NewHTTPClient(baseURL, healthPath string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote url %q must be absolute", baseURL)
	}
	if healthPath == "" {
		healthPath = DefaultHealthPath
	}
	return &HTTPClient{
		baseURL:    u,
		healthPath: healthPath,
		http:       &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) resolve(endpoint string) string {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	if q := strings.IndexByte(endpoint, '?'); q >= 0 {
		ref.Path = strings.TrimPrefix(endpoint[:q], "/")
		ref.RawQuery = endpoint[q+1:]
	}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String()
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.mapError(netx.DoJSON(ctx, c.http, http.MethodGet, c.resolve(c.healthPath), nil))
}

func (c *HTTPClient) Send(ctx context.Context, action models.Action, endpoint string, payload []byte) error {
	body := payload
	if action == models.ActionDelete {
		body = nil
	}
	err := netx.DoJSON(ctx, c.http, action.Method(), c.resolve(endpoint), body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, endpoint, c.mapError(err))
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *netx.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
