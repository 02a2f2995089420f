// Package httpapi holds the response envelope and the request plumbing shared by
// every storefront handler.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/storefront/internal/apperr"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const internalErrorMessage = "internal server error"

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteOK(w http.ResponseWriter, logger *slog.Logger, message string, data any) {
	WriteJSON(w, logger, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	WriteJSON(w, logger, status, Envelope{Success: false, Message: message})
}

// WriteFailure answers an expected failure with status and its message. Any
// other error is logged and hidden behind a generic 500.
func WriteFailure(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error("request failed", "error", err)
		WriteError(w, logger, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	WriteError(w, logger, status, apperr.Message(err))
}

// DecodeJSON reads a JSON body into dst, rejecting trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	if dec.More() {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// PathID parses the named path value as a positive integer id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
