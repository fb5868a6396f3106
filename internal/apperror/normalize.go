package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Response is the body of every error reply.
type Response struct {
	Msg string `json:"msg"`
}

// Normalize maps any error to the status code and message a client may see.
func Normalize(err error) (int, string) {
	var (
		domainErr *Error
		validErr  *ValidationError
		dupErr    *DuplicateKeyError
		idErr     *MalformedIDError
	)
	switch {
	case errors.As(err, &validErr):
		return http.StatusBadRequest, validErr.Error()
	case errors.As(err, &dupErr):
		return http.StatusBadRequest, dupErr.Error()
	case errors.As(err, &idErr):
		return http.StatusNotFound, idErr.Error()
	case errors.As(err, &domainErr):
		return domainErr.Status, domainErr.Msg
	default:
		return http.StatusInternalServerError, DefaultMessage
	}
}

// Write renders err as {"msg": ...}. Server-side failures are logged with
// their cause, which never reaches the response.
func Write(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	status, msg := Normalize(err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		} else {
			logger.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "msg", msg)
		}
	}
	WriteJSON(w, status, Response{Msg: msg})
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads the request body into v. An empty body leaves v zero so
// the caller's own validation answers; anything else that is not valid JSON
// for v is a bad request.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return BadRequest("invalid payload")
	}
	return nil
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn so any returned error goes through Normalize.
func Handle(logger *zap.SugaredLogger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Write(w, r, logger, err)
		}
	}
}
