// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, MessageResponse{Message: message})
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorResponse{Detail: detail, Code: code})
}

// JSONError writes err as an error body. AppErrors carry their own status
// and message; bare sentinels map to a generic message; anything else is
// logged and hidden behind a 500.
func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			slog.Error("internal error", "error", err)
		}
		writeError(w, appErr.StatusCode, appErr.Code, appErr.Message)
		return
	}

	status, code, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
	}
	writeError(w, status, code, detail)
}

func BadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not authenticated"
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	writeError(
		w,
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
	)
}

func FormatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", field))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}

	return strings.Join(msgs, "; ")
}
