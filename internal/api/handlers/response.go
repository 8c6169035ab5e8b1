package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ErrorWriter maps service errors onto status codes. With Detail set, 500
// responses carry the internal error text.
type ErrorWriter struct {
	Detail bool
}

func (e ErrorWriter) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, errorResponse{Message: msg}, http.StatusBadRequest)
}

func (e ErrorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		writeJSON(w, errorResponse{Message: publicMessage(err, entity.ErrValidation)}, http.StatusBadRequest)
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, errorResponse{Message: publicMessage(err, entity.ErrNotFound)}, http.StatusNotFound)
	default:
		logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		resp := errorResponse{Message: "Internal server error"}
		if e.Detail {
			resp.Error = err.Error()
		}
		writeJSON(w, resp, http.StatusInternalServerError)
	}
}

// publicMessage strips the error kind prefix and capitalizes the rest:
// "validation error: task name is required" -> "Task name is required".
func publicMessage(err, kind error) string {
	msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
