package opsapi

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError is returned when the OPS API answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ops api: status %d: %s", e.Code, e.Body)
}

// Client talks to the OPS order API, which owns order state.
// Reads are retried on transient failures; status pushes are sent once.
type Client struct {
	session *http.Client
	baseURL string
	backoff time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.session = c }
}

// WithBackoff sets the first retry delay; it doubles on each attempt.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) { cl.backoff = d }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ops api: base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("ops api: parse base url: %w", err)
	}

	c := &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type orderPayload struct {
	ID              string `json:"id"`
	OrderNumber     string `json:"orderNumber"`
	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	Status          string `json:"status"`
}

type statusPayload struct {
	Status string `json:"status"`
}

func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "ops.ListOrders")(&err)

	endpoint := c.baseURL + "/api/orders"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if status != "" {
			q := req.URL.Query()
			q.Set("status", string(status))
			req.URL.RawQuery = q.Encode()
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var payload []orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("list orders: %w: decode response: %w", domain.ErrUpstream, err)
	}

	out := make([]domain.Order, 0, len(payload))
	for _, p := range payload {
		out = append(out, domain.Order{
			ID:              p.ID,
			OrderNumber:     p.OrderNumber,
			CustomerID:      p.CustomerID,
			CustomerName:    p.CustomerName,
			CustomerAddress: p.CustomerAddress,
			Status:          domain.OrderStatus(p.Status),
		})
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (err error) {
	defer obs.Time(ctx, "ops.UpdateOrderStatus")(&err)

	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("update order status: %w: order id is empty", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(statusPayload{Status: string(status)})
	if err != nil {
		return fmt.Errorf("update order status: marshal body: %w", err)
	}

	endpoint := c.baseURL + "/api/orders/" + url.PathEscape(orderID)
	req, err := c.newRequest(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("update order %s to %s: %w: %w", orderID, status, domain.ErrUpstream, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 3
	backoff := c.backoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
