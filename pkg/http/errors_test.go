package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("bars missing")
	err := fmt.Errorf("simulate: %w", UnavailableError("ERR_SIMULATION_UNAVAILABLE", "no data").WithError(cause))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("AppError not found in %v", err)
	}
	if appErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", appErr.Status)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost")
	}
	if got := appErr.Error(); got != "ERR_SIMULATION_UNAVAILABLE: no data: bars missing" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAppErrorParamsAndConstructors(t *testing.T) {
	e := NotFoundError("ERR_MODEL_NOT_FOUND", "symbol", "no model")
	if e.Params != nil {
		t.Fatalf("params should start empty")
	}
	e.WithParam("symbol", "AAPL")
	if e.Params["symbol"] != "AAPL" || e.Status != http.StatusNotFound || e.Field != "symbol" {
		t.Fatalf("unexpected error %+v", e)
	}
	if c := ConflictError("ERR_BUSY", "symbol", "busy"); c.Status != http.StatusConflict {
		t.Fatalf("conflict status = %d", c.Status)
	}
	if i := InternalError("boom"); i.Status != http.StatusInternalServerError || i.Error() != "ERR_INTERNAL: boom" {
		t.Fatalf("internal = %+v", i)
	}
}
