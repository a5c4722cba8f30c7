// Package client talks to the todo REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"todo-tracker/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// NewTodo is the create-todo payload. Nil fields are sent as null.
type NewTodo struct {
	Title      string  `json:"title"`
	DueDate    *string `json:"due_date"`
	CategoryID *string `json:"category_id"`
}

// TodoUpdate is the update payload; the server overwrites every field.
type TodoUpdate struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Completed  bool    `json:"completed"`
	DueDate    *string `json:"due_date"`
	CategoryID *string `json:"category_id"`
}

// UpdateFrom builds an update that keeps every field of t as it is.
func UpdateFrom(t model.Todo) TodoUpdate {
	u := TodoUpdate{
		ID:         t.ID,
		Title:      t.Title,
		Completed:  t.Completed,
		CategoryID: t.CategoryID,
	}
	if t.DueDate != nil {
		due := t.DueDate.String()
		u.DueDate = &due
	}
	return u
}

// API is the set of calls the front-ends make. *Client implements it.
type API interface {
	ListTodos(ctx context.Context) ([]model.Todo, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateTodo(ctx context.Context, in NewTodo) (model.Todo, error)
	UpdateTodo(ctx context.Context, in TodoUpdate) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, name, color string) (model.Category, error)
}

var _ API = (*Client)(nil)

// IsTransport reports whether err came from failing to reach the server,
// as opposed to the server answering with an error status.
func IsTransport(err error) bool {
	var apiErr *APIError
	return err != nil && !errors.As(err, &apiErr)
}

// Client is a typed wrapper over the /api routes.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *Client) ListTodos(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos)
	return todos, err
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, &categories)
	return categories, err
}

func (c *Client) CreateTodo(ctx context.Context, in NewTodo) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPost, "/api/todos", in, &todo)
	return todo, err
}

func (c *Client) UpdateTodo(ctx context.Context, in TodoUpdate) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPut, "/api/todos", in, &todo)
	return todo, err
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos", map[string]string{"id": id}, nil)
}

func (c *Client) CreateCategory(ctx context.Context, name, color string) (model.Category, error) {
	var category model.Category
	err := c.do(ctx, http.MethodPost, "/api/categories", map[string]string{"name": name, "color": color}, &category)
	return category, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
