package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/handlers"
	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/service"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	db, err := repository.NewDB(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := handlers.NewRouter(
		service.NewCategoryService(repository.NewCategoryRepository(db)),
		service.NewTodoService(repository.NewTodoRepository(db)),
		nil,
	)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	category, err := c.CreateCategory(ctx, "Work", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "Work", category.Name)

	due := "2024-05-01"
	todo, err := c.CreateTodo(ctx, NewTodo{Title: "Report", DueDate: &due, CategoryID: &category.ID})
	require.NoError(t, err)
	require.NotNil(t, todo.Categories)
	assert.Equal(t, category, *todo.Categories)

	update := UpdateFrom(todo)
	update.Completed = !update.Completed
	toggled, err := c.UpdateTodo(ctx, update)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.True(t, toggled.DueOn(due), "fields sent back unchanged stay set")
	require.NotNil(t, toggled.CategoryID)
	assert.Equal(t, category.ID, *toggled.CategoryID)

	todos, err := c.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{category}, categories)

	require.NoError(t, c.DeleteTodo(ctx, todo.ID))
	todos, err = c.ListTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestClientAPIError(t *testing.T) {
	c := newTestServer(t)

	_, err := c.CreateTodo(context.Background(), NewTodo{Title: ""})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Title is required", apiErr.Message)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := New(srv.URL).DeleteTodo(context.Background(), "1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestUpdateFromKeepsNilOptionals(t *testing.T) {
	u := UpdateFrom(model.Todo{ID: "1", Title: "a", Completed: true})
	assert.Equal(t, TodoUpdate{ID: "1", Title: "a", Completed: true}, u)
}

func TestIsTransport(t *testing.T) {
	assert.False(t, IsTransport(nil))
	assert.False(t, IsTransport(&APIError{StatusCode: 500, Message: "boom"}))
	assert.True(t, IsTransport(errors.New("dial tcp: connection refused")))
}
