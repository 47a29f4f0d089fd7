package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"malformed", rterrors.New(rterrors.ErrCodeMalformedInput, "bad"), http.StatusBadRequest},
		{"mismatch", rterrors.New(rterrors.ErrCodeDimensionMismatch, "bad"), http.StatusBadRequest},
		{"parameter", rterrors.New(rterrors.ErrCodeInvalidParameter, "bad"), http.StatusBadRequest},
		{"wrapped input", fmt.Errorf("decode source: %w", rterrors.New(rterrors.ErrCodeMalformedInput, "bad")), http.StatusBadRequest},
		{"not found", rterrors.New(rterrors.ErrCodeFileNotFound, "gone"), http.StatusInternalServerError},
		{"internal", rterrors.New(rterrors.ErrCodeInternal, "boom"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteErrorInput(t *testing.T) {
	rec := httptest.NewRecorder()
	status := WriteError(rec, rterrors.New(rterrors.ErrCodeDimensionMismatch, "2x2 vs 3x3"))

	if status != http.StatusBadRequest || rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d / %d, want 400", status, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != rterrors.ErrCodeDimensionMismatch || body.Error.Message != "2x2 vs 3x3" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("redis: connection refused at 10.0.0.3"))

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != rterrors.ErrCodeInternal {
		t.Errorf("code = %s", body.Error.Code)
	}
	if body.Error.Message != "Internal Server Error" {
		t.Errorf("message leaked: %q", body.Error.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusCreated, map[string]string{"status": "ok"}); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"status\":\"ok\"}\n" {
		t.Errorf("body = %q", got)
	}
}
