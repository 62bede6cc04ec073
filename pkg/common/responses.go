package common

import (
	"encoding/json"
	"net/http"

	"chirp/pkg/errors"

	"go.uber.org/zap"
)

// ErrorBody is the wire format for every failed request
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the wire format for operations with no entity to return
type MessageBody struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondMessage sends a 200 with a human-readable message body
func RespondMessage(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusOK, MessageBody{Message: message})
}

// RespondError sends an error response with the given status
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondAppError maps an application error onto the wire. Client errors
// carry their message; server errors are logged and redacted.
func RespondAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := errors.HTTPStatusOf(err)
	if errors.IsServerError(err) {
		logger.Error("request failed", zap.Error(err))
		RespondError(w, status, "internal server error")
		return
	}
	if appErr, ok := errors.AsAppError(err); ok {
		RespondError(w, status, appErr.Message)
		return
	}
	RespondError(w, status, err.Error())
}

// DecodeJSONBody parses a JSON request body with a size limit
func DecodeJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
