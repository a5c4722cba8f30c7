package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-tracker/internal/service"
)

// TodoHandler serves /api/todos.
type TodoHandler struct {
	todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

type deleteRequest struct {
	ID looseID `json:"id"`
}

// looseID accepts an id sent as a string or a number. false, null, 0 and
// "" all read as a missing id.
type looseID string

func (l *looseID) UnmarshalJSON(b []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch v := v.(type) {
	case string:
		*l = looseID(v)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			*l = ""
		} else {
			*l = looseID(v.String())
		}
	case bool:
		if v {
			*l = "true"
		} else {
			*l = ""
		}
	case nil:
		*l = ""
	default:
		return fmt.Errorf("id: unsupported JSON value %s", b)
	}
	return nil
}

type successResponse struct {
	Success bool `json:"success"`
}

// List handles GET /api/todos.
func (h *TodoHandler) List(c echo.Context) error {
	todos, err := h.todos.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todos)
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(c echo.Context) error {
	var input service.TodoInput
	if err := decodeBody(c, &input); err != nil {
		return badPayload(c, err)
	}

	todo, err := h.todos.Create(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Update handles PUT /api/todos.
func (h *TodoHandler) Update(c echo.Context) error {
	var input service.TodoUpdate
	if err := decodeBody(c, &input); err != nil {
		return badPayload(c, err)
	}

	todo, err := h.todos.Update(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Delete handles DELETE /api/todos.
func (h *TodoHandler) Delete(c echo.Context) error {
	var input deleteRequest
	if err := decodeBody(c, &input); err != nil {
		return badPayload(c, err)
	}

	if err := h.todos.Delete(c.Request().Context(), string(input.ID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
