// Package convex is a thin client for the Convex HTTP API endpoints
// the invoice pipeline talks to: one action that persists a parsed
// invoice and the queries behind the voice-call workflow.
package convex

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultProcessFunction = "processInvoice"

// Client calls the Convex deployment backing the invoice pipeline.
type Client interface {
	// ProcessInvoice hands one invoice record to the persistence action.
	// The record is sent as-is; it is never batched or retried here.
	ProcessInvoice(ctx context.Context, record any) (*ProcessResult, error)
	// Query runs a read-only Convex function and returns its value.
	Query(ctx context.Context, path string, args any) (json.RawMessage, error)
	// GetCustomerProfile looks up a customer by email or name.
	GetCustomerProfile(ctx context.Context, email, customer string) (*CustomerProfile, error)
	// CustomersNeedingCalls lists customers with unpaid invoices that
	// are due a reminder call.
	CustomersNeedingCalls(ctx context.Context, daysSinceEmail int, maxOverdueDays *int) ([]CustomerProfile, error)
}

// ProcessResult is the action's acknowledgment for one record.
type ProcessResult struct {
	Success      bool   `json:"success"`
	InvoiceID    string `json:"invoiceId"`
	ErrorMessage string `json:"errorMessage"`
}

// CustomerProfile summarizes a customer's outstanding invoices.
type CustomerProfile struct {
	Customer       string  `json:"customer"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	UnpaidInvoices int     `json:"unpaidInvoices"`
	UnpaidAmount   float64 `json:"unpaidAmount"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithProcessFunction overrides the invoice persistence action path.
func WithProcessFunction(path string) Option {
	return func(c *httpClient) {
		c.processFunction = path
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRateLimit caps outgoing calls at rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	baseURL         string
	processFunction string
	http            *http.Client
	limiter         *rate.Limiter
}

// NewClient creates a Convex client for the given deployment URL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		processFunction: defaultProcessFunction,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// functionCall is the Convex HTTP API request envelope.
type functionCall struct {
	Path   string `json:"path"`
	Args   any    `json:"args"`
	Format string `json:"format"`
}

func (c *httpClient) ProcessInvoice(ctx context.Context, record any) (*ProcessResult, error) {
	body, err := c.call(ctx, "/api/action", functionCall{
		Path:   c.processFunction,
		Args:   []any{map[string]any{"data": record}},
		Format: "json",
	})
	if err != nil {
		return nil, err
	}

	var result ProcessResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "convex: unmarshal action response")
	}
	return &result, nil
}

func (c *httpClient) Query(ctx context.Context, path string, args any) (json.RawMessage, error) {
	body, err := c.call(ctx, "/api/query", functionCall{
		Path:   path,
		Args:   args,
		Format: "json",
	})
	if err != nil {
		return nil, err
	}

	// Query responses wrap the function result in a "value" field.
	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Value != nil {
		return envelope.Value, nil
	}
	return body, nil
}

func (c *httpClient) GetCustomerProfile(ctx context.Context, email, customer string) (*CustomerProfile, error) {
	value, err := c.Query(ctx, "emailRAG:getCustomerProfile", map[string]any{
		"email":    email,
		"customer": customer,
	})
	if err != nil {
		return nil, err
	}
	if string(value) == "null" {
		return nil, nil
	}

	var profile CustomerProfile
	if err := json.Unmarshal(value, &profile); err != nil {
		return nil, eris.Wrap(err, "convex: unmarshal customer profile")
	}
	return &profile, nil
}

func (c *httpClient) CustomersNeedingCalls(ctx context.Context, daysSinceEmail int, maxOverdueDays *int) ([]CustomerProfile, error) {
	value, err := c.Query(ctx, "voiceCall:getCustomersNeedingCalls", map[string]any{
		"daysSinceEmail": daysSinceEmail,
		"maxOverdueDays": maxOverdueDays,
	})
	if err != nil {
		return nil, err
	}

	var customers []CustomerProfile
	if err := json.Unmarshal(value, &customers); err != nil {
		return nil, eris.Wrap(err, "convex: unmarshal customers")
	}
	return customers, nil
}

func (c *httpClient) call(ctx context.Context, endpoint string, payload functionCall) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "convex: rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "convex: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "convex: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrapf(err, "convex: call %s", payload.Path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "convex: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("convex: %s returned status %d: %s", payload.Path, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
