package handler

import (
	"net/http"

	"FCCMonitorAPI/internal/auth"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/middleware"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlarmHandler struct {
	alarmService service.IAlarmService
	log          *logger.Logger
}

func NewAlarmHandler(alarmService service.IAlarmService, log *logger.Logger) *AlarmHandler {
	return &AlarmHandler{
		alarmService: alarmService,
		log:          log,
	}
}

func (h *AlarmHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alarms", h.List).Methods("GET")
	r.HandleFunc("/alarms/grouped", h.Grouped).Methods("GET")
	r.HandleFunc("/alarms/{id}", h.Get).Methods("GET")
	r.Handle("/alarms/{id}/acknowledge",
		middleware.RequireRole(auth.RoleOperator)(http.HandlerFunc(h.Acknowledge))).Methods("PUT")
}

// List returns the alarm history in display order. A missing or invalid
// limit falls back to the service default.
func (h *AlarmHandler) List(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.alarmService.List(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		respondServiceError(w, h.log, "list alarms", err)
		return
	}

	respondJSON(w, http.StatusOK, alarms)
}

func (h *AlarmHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.alarmService.Grouped(r.Context())
	if err != nil {
		respondServiceError(w, h.log, "group alarms", err)
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

func (h *AlarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	alarm, err := h.alarmService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, h.log, "get alarm", err)
		return
	}

	respondJSON(w, http.StatusOK, alarm)
}

func (h *AlarmHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := auth.SubjectFromContext(r.Context())

	alarm, err := h.alarmService.Acknowledge(r.Context(), id, user)
	if err != nil {
		respondServiceError(w, h.log, "acknowledge alarm", err)
		return
	}

	respondJSON(w, http.StatusOK, models.AcknowledgeResponse{Status: "acknowledged", Alarm: alarm})
}
