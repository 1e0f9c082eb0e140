package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperr "github.com/matzehuels/routesim/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeInvalidEdge,
		apperr.ErrCodeInvalidInput,
		apperr.ErrCodeInvalidFormat,
		apperr.ErrCodeInvalidName,
		apperr.ErrCodeInvalidPath,
		apperr.ErrCodeInconsistent,
		apperr.ErrCodeUnsupported:
		return http.StatusBadRequest
	case apperr.ErrCodeCapacityExceeded:
		return http.StatusConflict
	case apperr.ErrCodeOutOfRange:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}

	msg := apperr.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// decodeJSON decodes a request body into v, rejecting unknown fields.
// An empty body fails with an error that still matches io.EOF.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "request body is empty")
		}
		return apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}
