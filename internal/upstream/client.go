// Package upstream reads reconciliation inputs from another quotewise
// deployment over its JSON API.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quotewise/quotewise-backend/pkg/config"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/types"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultRetryWait = 200 * time.Millisecond
	maxRetryWait     = 2 * time.Second
)

// Client wraps a resty client bound to the upstream base URL.
type Client struct {
	http *resty.Client
	logg *logger.Logger
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// New builds an upstream client from config.
func New(cfg config.UpstreamConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("upstream base url required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "quotewise-backend").
		SetRetryCount(max(cfg.RetryCount, 0)).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(maxRetryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		})
	if token := strings.TrimSpace(cfg.Token); token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{http: httpClient, logg: logg}, nil
}

// Quotations returns the quotation store backed by this client.
func (c *Client) Quotations() *QuotationStore { return &QuotationStore{c: c} }

// Inventory returns the inventory store backed by this client.
func (c *Client) Inventory() *InventoryStore { return &InventoryStore{c: c} }

// Bindings returns the SKU binding store backed by this client.
func (c *Client) Bindings() *BindingStore { return &BindingStore{c: c} }

// Ratios returns the price ratio store backed by this client.
func (c *Client) Ratios() *RatioStore { return &RatioStore{c: c} }

// Suppliers returns the supplier lookup store backed by this client.
func (c *Client) Suppliers() *SupplierStore { return &SupplierStore{c: c} }

// Ping checks the upstream readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health/ready")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream unreachable")
	}
	if resp.IsError() {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("upstream not ready: %s", resp.Status()))
	}
	return nil
}

// call issues one request and unwraps the data envelope into T.
func call[T any](ctx context.Context, c *Client, method, path string, build func(*resty.Request)) (T, error) {
	var zero T
	req := c.http.R().
		SetContext(ctx).
		SetResult(&envelope[T]{}).
		SetError(&types.ErrorEnvelope{})
	if build != nil {
		build(req)
	}

	started := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("upstream %s %s failed", method, path))
	}

	if resp.IsError() {
		typed := decodeError(resp)
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"method":      method,
			"path":        path,
			"status":      resp.StatusCode(),
			"error_code":  string(typed.Code()),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		c.logg.Warn(logCtx, "upstream.error")
		return zero, typed
	}

	out, ok := resp.Result().(*envelope[T])
	if !ok || out == nil {
		return zero, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("upstream %s %s returned an unreadable body", method, path))
	}
	return out.Data, nil
}

// decodeError maps an upstream error envelope back onto a local error code.
// Client-side codes pass through; anything else is a dependency failure.
func decodeError(resp *resty.Response) *pkgerrors.Error {
	env, _ := resp.Error().(*types.ErrorEnvelope)
	message := resp.Status()
	var code pkgerrors.Code
	var details any
	if env != nil {
		code = pkgerrors.Code(env.Error.Code)
		details = env.Error.Details
		if env.Error.Message != "" {
			message = env.Error.Message
		}
	}

	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
		out := pkgerrors.New(code, message)
		if details != nil {
			out = out.WithDetails(details)
		}
		return out
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("upstream: %s", message))
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}
