// Package client is a typed HTTP client for the pantryd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pantry/internal/storage"
	"pantry/internal/todo"
)

const defaultTimeout = 2 * time.Minute

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("pantryd returned %d", e.StatusCode)
	}
	return fmt.Sprintf("pantryd returned %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type TodoPage struct {
	Total int64       `json:"total"`
	Todos []todo.Todo `json:"todos"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	var greeting string
	err := c.doJSON(ctx, http.MethodGet, "/", nil, &greeting)
	return greeting, err
}

func (c *Client) ListTodos(ctx context.Context, skip, limit int) (TodoPage, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var page TodoPage
	err := c.doJSON(ctx, http.MethodGet, "/todos?"+q.Encode(), nil, &page)
	return page, err
}

func (c *Client) CreateTodo(ctx context.Context, label string, quantity int) (todo.Todo, error) {
	body, err := json.Marshal(map[string]any{"label": label, "quantity": quantity})
	if err != nil {
		return todo.Todo{}, err
	}
	var created todo.Todo
	err = c.doJSON(ctx, http.MethodPost, "/todos", bytes.NewReader(body), &created)
	return created, err
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) (todo.Todo, error) {
	var deleted todo.Todo
	err := c.doJSON(ctx, http.MethodDelete, "/todos/"+strconv.FormatInt(id, 10), nil, &deleted)
	return deleted, err
}

func (c *Client) ListObjects(ctx context.Context) ([]storage.Object, error) {
	var resp struct {
		Files []storage.Object `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/objects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// UploadObject sends content as the multipart "file" field and returns the
// server's confirmation message.
func (c *Client) UploadObject(ctx context.Context, name string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/objects", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp messageResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DownloadObject(ctx context.Context, name string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, objectPath(name), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) DeleteObject(ctx context.Context, name string) (string, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodDelete, objectPath(name), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) BucketType(ctx context.Context) (string, error) {
	var resp struct {
		BucketType string `json:"bucket_type"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/bucket-type", nil, &resp); err != nil {
		return "", err
	}
	return resp.BucketType, nil
}

func objectPath(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/objects/" + strings.Join(segments, "/")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}
