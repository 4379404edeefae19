// Package httpc es el HTTP client compartido de los adapters de canal:
// rate limiting por cliente, retries con backoff exponencial y decode JSON.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	// errBodyLimit acota cuánto detalle del vendor se incluye en el error.
	errBodyLimit = 2048
)

// Client envuelve http.Client con rate limiting y retries.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// New crea un Client. ratePerSec acota las requests salientes; burst es el
// colchón inicial del token bucket.
func New(timeout time.Duration, ratePerSec float64, burst int) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

// GetJSON hace un GET con los headers dados y decodifica la respuesta en out.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		applyHeaders(req, headers)
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// PostJSON hace un POST con body JSON y decodifica la respuesta en out.
func (c *Client) PostJSON(ctx context.Context, url string, headers http.Header, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpc.PostJSON: marshal body: %w", err)
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		applyHeaders(req, headers)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta fn con backoff exponencial. Reintenta errores de red,
// 429 y 5xx; un 4xx distinto de 429 es permanente y devuelve el detalle del
// vendor en el error.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("httpc: rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("httpc: request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("httpc: upstream status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
			resp.Body.Close()
			return fmt.Errorf("httpc: upstream status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("httpc: decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("httpc: exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial más jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	wait += rand.N(baseRetryWait / 2)
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

func applyHeaders(req *http.Request, headers http.Header) {
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}
