package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
)

// statusFor maps a failure kind onto an HTTP status
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindAuthorization:
		return http.StatusForbidden
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindState:
		return http.StatusConflict
	case errs.KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse sends a classified error
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	s.fail(w, status, kind.String(), err.Error())
}

// fail sends an error payload with the given status
func (s *Server) fail(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Status: "error",
		Kind:   kind,
		Error:  message,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}
