// Package catalog wraps the external FakeStore-compatible product
// catalog API consumed by the storefront engines.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shophub/storefront/pkg/config"
	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/metrics"
)

// Client issues HTTP requests against the catalog service.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewClient builds a catalog client from the provided configuration.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		logg:    logg,
		metrics: m,
	}, nil
}

// do performs one request and decodes the JSON response into dest.
// Failures are never retried; the caller decides how to present them.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding catalog request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building catalog request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveCatalogRequest(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncCatalogFailure(endpoint)
		if c.logg != nil {
			c.logg.Error(ctx, "catalog request failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncCatalogFailure(endpoint)
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog request failed with status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "endpoint": endpoint})
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.IncCatalogFailure(endpoint)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding catalog response")
	}
	return nil
}
