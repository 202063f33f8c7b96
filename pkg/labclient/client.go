// Package labclient is a Go client for the laboratory inventory API. It
// validates every response against the record shapes in types.go, keeps
// the login session in one SessionManager, and implements the form
// workflows of the web frontend.
package labclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lab-inventory/pkg/validator"

	resty "github.com/go-resty/resty/v2"
)

var (
	// ErrRequestFailed covers transport errors and non-2xx responses.
	ErrRequestFailed = errors.New("request failed")
	// ErrInvalidResponse means the body did not decode into the expected record.
	ErrInvalidResponse = errors.New("failed to fetch: invalid response")
)

// HTTPError carries the status and server message of a non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

type Client struct {
	http     *resty.Client
	sessions *SessionManager
}

// New creates a client for baseURL (for example http://localhost:3000/api/v1).
func New(baseURL string, sessions *SessionManager) *Client {
	c := &Client{
		http: resty.New().
			SetTimeout(30*time.Second).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
		sessions: sessions,
	}
	sessions.refresh = c.validateToken
	return c
}

// Sessions exposes the session manager shared by every call.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// request starts a request. Authenticated requests read the token from the
// session manager and fail early when there is no usable session.
func (c *Client) request(ctx context.Context, authenticated bool) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)
	if authenticated {
		s, err := c.sessions.Current()
		if err != nil {
			return nil, err
		}
		req.SetAuthToken(s.Token)
	}
	return req, nil
}

// send executes req and decodes the body into result when result is not nil.
func send(req *resty.Request, method, path string, result interface{}) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %w", ErrRequestFailed, &HTTPError{
			Status:  resp.StatusCode(),
			Message: errorMessage(resp.Body()),
		})
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}

// envelope is the {"message", "data"} wrapper of create and update responses.
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// checked validates a decoded record.
func checked[T any](v *T) (*T, error) {
	if err := validator.Check(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return v, nil
}

func checkedList[T any](items []T) ([]T, error) {
	for i := range items {
		if _, err := checked(&items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	req, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}
	var out T
	if err := send(req, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return checked(&out)
}

func getList[T any](ctx context.Context, c *Client, path string, query map[string]string) ([]T, error) {
	req, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := send(req.SetQueryParams(compact(query)), http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return checkedList(out)
}

// write sends body with method and decodes the enveloped record.
func write[T any](ctx context.Context, c *Client, method, path string, body interface{}) (*T, error) {
	req, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}
	var out envelope[T]
	if err := send(req.SetBody(body), method, path, &out); err != nil {
		return nil, err
	}
	return checked(&out.Data)
}

func compact(query map[string]string) map[string]string {
	out := make(map[string]string, len(query))
	for k, v := range query {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
