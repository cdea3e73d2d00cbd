package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"notes-api/domain"
)

// noteNotFound writes the 404 envelope used by every by-id operation.
func noteNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Detail: "Note not found"})
}

// validationFailed writes the 422 envelope for a failed payload. Errors that
// are not ValidationError still surface as a single body-level entry so the
// envelope shape stays stable.
func validationFailed(c echo.Context, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{Detail: vErr.Fields})
	}
	return invalidBody(c, err.Error(), "value_error")
}

// invalidBody writes a 422 for a body that could not be read or decoded at
// all, before any field was seen.
func invalidBody(c echo.Context, msg, errType string) error {
	return c.JSON(http.StatusUnprocessableEntity, validationResponse{
		Detail: []domain.FieldError{{Loc: []string{"body"}, Msg: msg, Type: errType}},
	})
}
