package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
		wantMsg  string
	}{
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized, "unauthorized", "could not validate credentials"},
		{"forbidden", domain.ErrNotEnoughPrivilege, http.StatusForbidden, "forbidden", "not enough privileges"},
		{"not found", domain.ErrProductNotFound, http.StatusNotFound, "not_found", "product not found"},
		{"conflict", domain.ErrSKUExists, http.StatusConflict, "conflict", "stockKeepingUnit already exists"},
		{"validation", domain.NewValidationError("price must be greater than 0"), http.StatusUnprocessableEntity, "validation", "price must be greater than 0"},
		{"wrapped domain error", errors.Join(errors.New("ctx"), domain.ErrCategoryInUse), http.StatusConflict, "conflict", "category has products"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "bad_request", "invalid payload"},
		{"rate limited", echo.ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests", "Too Many Requests"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Kind != tc.wantKind || resp.Error != tc.wantMsg {
				t.Fatalf("unexpected body: %+v", resp)
			}
			wantChallenge := tc.wantCode == http.StatusUnauthorized
			if got := rec.Header().Get(echo.HeaderWWWAuthenticate) == "Bearer"; got != wantChallenge {
				t.Fatalf("WWW-Authenticate presence = %v, want %v", got, wantChallenge)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response must not be rewritten")
	}
}
