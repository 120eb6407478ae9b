// Package supabase wraps the PostgREST, GoTrue and edge function endpoints
// of a Supabase-compatible backend behind the few calls the board needs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"
)

const (
	restPath      = "/rest/v1"
	authPath      = "/auth/v1"
	functionsPath = "/functions/v1/"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	auth    gotrue.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient sets the client used for identity and function calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	c.auth = gotrue.New("", apiKey).
		WithCustomGoTrueURL(c.baseURL + authPath).
		WithClient(*c.http)
	return c
}

// SetAccessToken sets the bearer used for every request. An empty token
// falls back to the anon key.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" {
		return c.token
	}
	return c.apiKey
}

// rest returns a PostgREST client carrying the current bearer. A fresh
// client per call keeps token changes away from requests in flight.
func (c *Client) rest() *postgrest.Client {
	return postgrest.NewClient(c.baseURL+restPath, "", map[string]string{
		"apikey":        c.apiKey,
		"Authorization": "Bearer " + c.bearer(),
	})
}

func (c *Client) From(table string) *Table {
	return &Table{c: c, name: table}
}

// Invoke calls the edge function name with body as JSON and decodes the
// response into out when out is non-nil.
func (c *Client) Invoke(ctx context.Context, name string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+functionsPath+name, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
