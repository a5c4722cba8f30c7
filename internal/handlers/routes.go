package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"todo-tracker/internal/service"
)

// Pinger reports whether the store is reachable.
type Pinger func(ctx context.Context) error

// NewRouter builds the echo instance serving the REST surface.
func NewRouter(categories *service.CategoryService, todos *service.TodoService, ping Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	Register(e, NewCategoryHandler(categories), NewTodoHandler(todos))

	e.GET("/health", func(c echo.Context) error {
		if ping != nil {
			if err := ping(c.Request().Context()); err != nil {
				log.Printf("health: %v", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

// Register mounts the category and todo resources under /api.
func Register(e *echo.Echo, categories *CategoryHandler, todos *TodoHandler) {
	api := e.Group("/api")

	api.GET("/categories", categories.List)
	api.POST("/categories", categories.Create)

	api.GET("/todos", todos.List)
	api.POST("/todos", todos.Create)
	api.PUT("/todos", todos.Update)
	api.DELETE("/todos", todos.Delete)
}
