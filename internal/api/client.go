package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("api: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("api: %s: status %d: %s", e.Op, e.Status, body)
}

// Client talks to the booth backend over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for baseURL. An empty token sends no Authorization header.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		rc.SetAuthToken(token)
	}
	return &Client{http: rc}
}

func (c *Client) SaveUserData(ctx context.Context, u UserData) (SaveResult, error) {
	var out SaveResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(u).
		Post("/api/users")
	if err != nil {
		return SaveResult{}, fmt.Errorf("api: save user: %w", err)
	}
	if resp.IsError() {
		return SaveResult{}, &StatusError{Op: "save user", Status: resp.StatusCode(), Body: resp.String()}
	}
	if err := decodeBody("save user", resp.Body(), &out); err != nil {
		return SaveResult{}, err
	}
	return out, nil
}

// FetchTemplates accepts either a bare array or {"templates": [...]}.
func (c *Client) FetchTemplates(ctx context.Context, gender string) ([]Template, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("gender", gender).
		Get("/api/templates")
	if err != nil {
		return nil, fmt.Errorf("api: fetch templates: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: "fetch templates", Status: resp.StatusCode(), Body: resp.String()}
	}
	return decodeTemplates(resp.Body())
}

func decodeTemplates(body []byte) ([]Template, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var list []Template
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("api: parse templates: %w", err)
		}
		return list, nil
	}
	var wrapped struct {
		Templates []Template `json:"templates"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("api: parse templates: %w", err)
	}
	return wrapped.Templates, nil
}

// decodeBody parses a JSON reply regardless of its Content-Type. An empty body leaves
// out untouched.
func decodeBody(op string, body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: parse %s response: %w", op, err)
	}
	return nil
}

func (c *Client) PrintImage(ctx context.Context, image []byte, printer, size string) (PrintResponse, error) {
	var out PrintResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image", "print.png", bytes.NewReader(image)).
		SetFormData(map[string]string{"printer": printer, "size": size}).
		Post("/api/print")
	if err != nil {
		return PrintResponse{}, fmt.Errorf("api: print: %w", err)
	}
	if resp.IsError() {
		return PrintResponse{}, &StatusError{Op: "print", Status: resp.StatusCode(), Body: resp.String()}
	}
	if err := decodeBody("print", resp.Body(), &out); err != nil {
		return PrintResponse{}, err
	}
	return out, nil
}

func (c *Client) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	name := req.PhotoName
	if name == "" {
		name = "capture.jpg"
	}
	var out SwapResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("photo", filepath.Base(name), bytes.NewReader(req.Photo)).
		SetFormData(map[string]string{"template_url": req.TemplateURL}).
		Post("/api/swap")
	if err != nil {
		return SwapResult{}, fmt.Errorf("api: swap: %w", err)
	}
	if resp.IsError() {
		return SwapResult{}, &StatusError{Op: "swap", Status: resp.StatusCode(), Body: resp.String()}
	}
	if err := decodeBody("swap", resp.Body(), &out); err != nil {
		return SwapResult{}, err
	}
	return out, nil
}

// LoadImage resolves a data URL, an http(s) URL or a local path to bytes.
func (c *Client) LoadImage(ctx context.Context, ref string) ([]byte, error) {
	if !isRemote(ref) {
		return readImageRef(ref)
	}
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "image/*").Get(ref)
	if err != nil {
		return nil, fmt.Errorf("api: load image: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: "load image", Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}
