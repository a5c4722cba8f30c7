package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-tracker/internal/service"
)

// CategoryHandler serves /api/categories.
type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	var input service.CategoryInput
	if err := decodeBody(c, &input); err != nil {
		return badPayload(c, err)
	}

	category, err := h.categories.Create(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}
