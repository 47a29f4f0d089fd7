package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// ErrorBody is the JSON envelope of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    rterrors.Code `json:"code"`
	Message string        `json:"message"`
}

// StatusFor maps err to an HTTP status code.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case rterrors.IsInputError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NewErrorBody builds the response body for err. Only input errors reveal
// their message; anything else is reported as an internal error.
func NewErrorBody(err error) ErrorBody {
	status := StatusFor(err)
	switch {
	case status == http.StatusRequestEntityTooLarge:
		return ErrorBody{Error: ErrorDetail{Code: rterrors.ErrCodeInvalidParameter, Message: "request body too large"}}
	case status < http.StatusInternalServerError:
		return ErrorBody{Error: ErrorDetail{Code: rterrors.GetCode(err), Message: rterrors.UserMessage(err)}}
	}
	return ErrorBody{Error: ErrorDetail{Code: rterrors.ErrCodeInternal, Message: http.StatusText(status)}}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a JSON error response and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	_ = WriteJSON(w, status, NewErrorBody(err))
	return status
}
