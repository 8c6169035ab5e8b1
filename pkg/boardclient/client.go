// Package boardclient is a thin HTTP client for the kanban board API.
package boardclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 10 * time.Second

	networkErrorMessage = "Network error. Please check your connection."
)

var (
	ErrTaskNameRequired = errors.New("task name is required")
	ErrTaskIDRequired   = errors.New("task id is required")
	ErrSectionName      = errors.New("section name is required")
	ErrSectionID        = errors.New("section id is required")
)

var inputMessages = map[error]string{
	ErrTaskNameRequired: "Task name is required",
	ErrTaskIDRequired:   "Task ID is required",
	ErrSectionName:      "Section name is required",
	ErrSectionID:        "Section ID is required",
}

// invalidInput wraps a client-side check failure. No request is sent.
func invalidInput(err error) *APIError {
	return &APIError{Message: inputMessages[err], Err: err}
}

// APIError carries a user-facing message for every failed call. StatusCode is
// zero when the server could not be reached.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Debug      bool
}

type Client struct {
	http *resty.Client
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/api").
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetDebug(opts.Debug)
	c.AddRetryCondition(retryCondition)

	return &Client{http: c}
}

// retryCondition retries reads on network failures and 5xx answers.
// Mutations are never retried.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return r.StatusCode() >= http.StatusInternalServerError
}

type errorBody struct {
	Message string `json:"message"`
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	default:
		return "An unexpected error occurred"
	}
}

// do sends the request and normalizes every failure into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &APIError{Message: networkErrorMessage, Err: err}
	}
	if resp.IsError() {
		msg := ""
		if eb, ok := resp.Error().(*errorBody); ok {
			msg = eb.Message
		}
		if msg == "" {
			msg = defaultMessage(resp.StatusCode())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
