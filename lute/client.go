// Package lute is the HTTP transport to a Lute server.
package lute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lai323/lutego/config"
	"golang.org/x/net/html/charset"
)

const (
	PathIndex        = "/"
	PathDataTables   = "/book/datatables/active"
	PathCustomStyles = "/theme/custom_styles"

	userAgent        = "lutego/1.0"
	browserUserAgent = "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36"
	retryDelay       = 500 * time.Millisecond
)

func PathRead(bookID int) string        { return "/read/" + strconv.Itoa(bookID) }
func PathBookEdit(bookID int) string    { return "/book/edit/" + strconv.Itoa(bookID) }
func PathBookArchive(bookID int) string { return "/book/archive/" + strconv.Itoa(bookID) }
func PathBookDelete(bookID int) string  { return "/book/delete/" + strconv.Itoa(bookID) }
func PathTermEdit(termID int) string    { return "/term/edit/" + strconv.Itoa(termID) }
func PathLanguageEdit(langID int) string {
	return "/language/edit/" + strconv.Itoa(langID)
}

var (
	// ErrServer marks a response with a non-2xx status.
	ErrServer = errors.New("lute: server error")
	// ErrTransport marks a request that got no response at all.
	ErrTransport = errors.New("network failure")
)

type StatusError struct {
	Method string
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lute: %s %s: status %d", e.Method, e.URL, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrServer }

// Client executes requests against the configured server. It holds no
// per-request state and is shared by every consumer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		if proxy, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		log:        logger.With("component", "lute"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) (string, error) {
	if c.baseURL == "" {
		return "", config.ErrServerURLNotSet
	}
	return c.baseURL + path, nil
}

// Get fetches a server page.
func (c *Client) Get(ctx context.Context, path string) (string, error) {
	u, err := c.url(path)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("lute: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return c.do(ctx, req, true)
}

// PostForm submits a form-urlencoded body. A nil form sends no body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (string, error) {
	u, err := c.url(path)
	if err != nil {
		return "", err
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", fmt.Errorf("lute: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.do(ctx, req, false)
}

// FetchPage loads an absolute URL, typically an external dictionary, the
// way a browser would, decoding the body to UTF-8.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("lute: create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en;q=0.9")
	return c.do(ctx, req, true)
}

func (c *Client) do(ctx context.Context, req *http.Request, retry bool) (string, error) {
	resp, err := c.httpClient.Do(req)
	if retry && shouldRetry(resp, err) && ctx.Err() == nil {
		reason := "network error"
		if err == nil {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		c.log.WarnContext(ctx, "retrying request", "url", req.URL.String(), "reason", reason)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("lute: %s %s: %w: %w", req.Method, req.URL.Path, ErrTransport, ctx.Err())
		case <-time.After(retryDelay):
		}
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		c.log.WarnContext(ctx, "request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return "", fmt.Errorf("lute: %s %s: %w: %w", req.Method, req.URL.Path, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Method: req.Method, URL: req.URL.Path, Status: resp.StatusCode}
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("lute: decode body: %w", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("lute: read body: %w", err)
	}
	return string(b), nil
}

func shouldRetry(resp *http.Response, err error) bool {
	return err != nil || resp.StatusCode >= 500
}
