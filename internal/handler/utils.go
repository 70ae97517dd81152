package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"FCCMonitorAPI/internal/causality"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/repository"
	"FCCMonitorAPI/internal/service"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps domain errors to status codes. Anything
// unrecognised is logged and reported as a 500.
func respondServiceError(w http.ResponseWriter, log *logger.Logger, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrAlarmNotFound), errors.Is(err, service.ErrUnknownTag):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyAcknowledged):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, causality.ErrInvalidGraph), errors.Is(err, service.ErrInvalidHandover):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("Failed to %s: %v", action, err)
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
