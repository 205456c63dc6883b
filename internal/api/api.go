// Package api is the generic JSON transport every typed todo call goes through.
// All routes live under a fixed prefix (api/ by default) and every request
// carries the same two headers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	DefaultPrefix = "api/"
	// DefaultUser is the placeholder identity sent when nobody is configured.
	DefaultUser = "test"
)

// Client holds the fixed request configuration. The zero value is not usable;
// build one with New.
type Client struct {
	BaseURL    string
	Prefix     string
	User       string
	HTTPClient *http.Client
	Logger     *log.Logger

	// Check, when set, sees every raw response body before it is decoded.
	// A non-nil error rejects the call with a *DecodeError.
	Check func(path string, status int, body []byte) error
}

func New(baseURL, user string) *Client {
	if strings.TrimSpace(user) == "" {
		user = DefaultUser
	}
	return &Client{
		BaseURL:    baseURL,
		Prefix:     DefaultPrefix,
		User:       user,
		HTTPClient: http.DefaultClient,
	}
}

// Param is one query parameter. GET keeps params in the order given.
type Param struct {
	Key   string
	Value string
}

// Query serializes params the way the backend has always received them:
// a leading "?" even when empty and a trailing "&" after every pair.
// Values are not escaped.
func Query(params []Param) string {
	var b strings.Builder
	b.WriteByte('?')
	for _, p := range params {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
		b.WriteByte('&')
	}
	return b.String()
}

// URL resolves a relative api path, e.g. "getTodos" -> <base>/api/getTodos.
func (c *Client) URL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + c.Prefix + strings.TrimLeft(path, "/")
}

func Get[Resp any](ctx context.Context, c *Client, path string, params ...Param) (Resp, error) {
	return do[Resp](ctx, c, http.MethodGet, path, c.URL(path)+Query(params), nil)
}

func Post[Resp, Req any](ctx context.Context, c *Client, path string, data *Req) (Resp, error) {
	return send[Resp](ctx, c, http.MethodPost, path, data)
}

func Put[Resp, Req any](ctx context.Context, c *Client, path string, data *Req) (Resp, error) {
	return send[Resp](ctx, c, http.MethodPut, path, data)
}

func Patch[Resp, Req any](ctx context.Context, c *Client, path string, data *Req) (Resp, error) {
	return send[Resp](ctx, c, http.MethodPatch, path, data)
}

func Delete[Resp, Req any](ctx context.Context, c *Client, path string, data *Req) (Resp, error) {
	return send[Resp](ctx, c, http.MethodDelete, path, data)
}

func send[Resp, Req any](ctx context.Context, c *Client, method, path string, data *Req) (Resp, error) {
	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			var zero Resp
			return zero, fmt.Errorf("%s %s: marshal body: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	return do[Resp](ctx, c, method, path, c.URL(path), body)
}

func do[Resp any](ctx context.Context, c *Client, method, path, url string, body io.Reader) (Resp, error) {
	var out Resp

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return out, &RequestError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("user", c.User)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		c.debug("request failed", "method", method, "url", url, "err", err)
		return out, &RequestError{Method: method, URL: url, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	c.debug("response", "method", method, "url", url, "status", res.StatusCode, "took", time.Since(start))
	if err != nil {
		return out, &DecodeError{Method: method, URL: url, Status: res.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if c.Check != nil {
		if err := c.Check(path, res.StatusCode, raw); err != nil {
			return out, &DecodeError{Method: method, URL: url, Status: res.StatusCode, Snippet: snippet(raw), Err: err}
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &DecodeError{Method: method, URL: url, Status: res.StatusCode, Snippet: snippet(raw), Err: err}
	}
	return out, nil
}

func (c *Client) debug(msg string, kv ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, kv...)
	}
}

func snippet(b []byte) string {
	const limit = 120
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
