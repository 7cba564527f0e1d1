package http

import (
	"errors"
	"net/http"

	"chama-ledger/internal/domain/approval"
	"chama-ledger/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

// writeError maps a use-case error onto a status code. Unknown errors are
// handed to echo so the request logger records the cause; the client only
// sees "internal error".
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, loan.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	case errors.Is(err, approval.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "decision not found"})
	case errors.Is(err, loan.ErrInvalidState):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrExceedsBalance):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "loan was modified concurrently, retry"})
	default:
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  ErrorResponse{Error: "internal error"},
			Internal: err,
		}
	}
}

// bindAndValidate returns the status and payload to reject the request with,
// or nil when req is usable.
func bindAndValidate(c echo.Context, req any) (int, *ErrorResponse) {
	if err := c.Bind(req); err != nil {
		return http.StatusBadRequest, &ErrorResponse{Error: "invalid body"}
	}
	if err := c.Validate(req); err != nil {
		return http.StatusUnprocessableEntity, &ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		}
	}
	return 0, nil
}
