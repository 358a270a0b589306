package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds", domain.ErrInsufficientFunds.Error()},
		{"wrapped not found", fmt.Errorf("join: %w", domain.ErrRoomNotFound), http.StatusNotFound, "room_not_found", domain.ErrRoomNotFound.Error()},
		{"room full", domain.ErrRoomFull, http.StatusConflict, "room_full", domain.ErrRoomFull.Error()},
		{"already elsewhere", domain.ErrAlreadyInAnotherRoom, http.StatusConflict, "already_in_another_room", domain.ErrAlreadyInAnotherRoom.Error()},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition", domain.ErrInvalidTransition.Error()},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden", domain.ErrForbidden.Error()},
		{
			"grant failed wins over cause",
			fmt.Errorf("%w: %w", domain.ErrGrantFailed, domain.ErrItemNotFound),
			http.StatusInternalServerError, "grant_failed_refunded", domain.ErrGrantFailed.Error(),
		},
		{"needs reconciliation", domain.ErrCompensationFailed, http.StatusInternalServerError, "needs_reconciliation", domain.ErrCompensationFailed.Error()},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "", "invalid payload"},
		{"unknown", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/purchases", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tt.wantCode || body.Error != tt.wantError {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_BusyAsksForRetry(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/rooms/r-1/join", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("acquire room:r-1: %w", domain.ErrBusy), c)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/v1/rooms/r-1", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrRoomNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}
