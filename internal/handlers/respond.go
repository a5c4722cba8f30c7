package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-tracker/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

const invalidPayload = "Invalid request payload"

// decodeBody reads the JSON request body into v.
func decodeBody(c echo.Context, v interface{}) error {
	return json.NewDecoder(c.Request().Body).Decode(v)
}

func badPayload(c echo.Context, err error) error {
	log.Printf("decode %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: invalidPayload})
}

// respondError maps service errors to status codes: validation failures are
// the client's fault, everything else is reported as a server error with the
// store's message.
func respondError(c echo.Context, err error) error {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validation.Message})
	}

	var storeErr *service.StoreError
	if errors.As(err, &storeErr) {
		log.Printf("%s: %v", storeErr.Op, storeErr.Err)
	} else {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
