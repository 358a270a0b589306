package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorMapping is the HTTP rendering of a domain error.
type errorMapping struct {
	status int
	code   string
}

// domainErrors is checked in order with errors.Is. Saga errors come before
// the not-found family since they may wrap a cause.
var domainErrors = []struct {
	err error
	errorMapping
}{
	{domain.ErrCompensationFailed, errorMapping{http.StatusInternalServerError, "needs_reconciliation"}},
	{domain.ErrGrantFailed, errorMapping{http.StatusInternalServerError, "grant_failed_refunded"}},
	{domain.ErrBusy, errorMapping{http.StatusServiceUnavailable, "busy"}},

	{domain.ErrUserNotFound, errorMapping{http.StatusNotFound, "user_not_found"}},
	{domain.ErrCharacterNotFound, errorMapping{http.StatusNotFound, "character_not_found"}},
	{domain.ErrRoomNotFound, errorMapping{http.StatusNotFound, "room_not_found"}},
	{domain.ErrItemNotFound, errorMapping{http.StatusNotFound, "item_not_found"}},
	{domain.ErrInventoryNotFound, errorMapping{http.StatusNotFound, "inventory_not_found"}},
	{domain.ErrPurchaseNotFound, errorMapping{http.StatusNotFound, "purchase_not_found"}},

	{domain.ErrInvalidAmount, errorMapping{http.StatusBadRequest, "invalid_amount"}},
	{domain.ErrInvalidTransition, errorMapping{http.StatusUnprocessableEntity, "invalid_transition"}},
	{domain.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "invalid_credentials"}},
	{domain.ErrForbidden, errorMapping{http.StatusForbidden, "forbidden"}},
	{domain.ErrUserExists, errorMapping{http.StatusConflict, "user_exists"}},
	{domain.ErrDuplicateRequest, errorMapping{http.StatusConflict, "duplicate_request"}},

	{domain.ErrInsufficientFunds, errorMapping{http.StatusUnprocessableEntity, "insufficient_funds"}},
	{domain.ErrRoomFull, errorMapping{http.StatusConflict, "room_full"}},
	{domain.ErrRoomClosed, errorMapping{http.StatusConflict, "room_closed"}},
	{domain.ErrAlreadyInAnotherRoom, errorMapping{http.StatusConflict, "already_in_another_room"}},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and a stable code.
//   - Asks the client to retry after a lock timeout.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if errors.Is(err, domain.ErrBusy) {
			c.Response().Header().Set("Retry-After", "1")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	for _, m := range domainErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.status == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("code", m.code).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return m.status, errorResponse{Error: m.err.Error(), Code: m.code}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal"}
}
