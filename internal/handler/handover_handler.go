package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FCCMonitorAPI/internal/auth"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/middleware"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type HandoverHandler struct {
	handoverService service.IHandoverService
	log             *logger.Logger
}

func NewHandoverHandler(handoverService service.IHandoverService, log *logger.Logger) *HandoverHandler {
	return &HandoverHandler{
		handoverService: handoverService,
		log:             log,
	}
}

func (h *HandoverHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/handover", h.List).Methods("GET")
	r.Handle("/handover", middleware.RequireRole(auth.RoleOperator)(http.HandlerFunc(h.Create))).Methods("POST")
	r.HandleFunc("/handover/report.pdf", h.Report).Methods("GET")
}

func (h *HandoverHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.handoverService.List(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		respondServiceError(w, h.log, "list handover logs", err)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

func (h *HandoverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHandoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.handoverService.Create(r.Context(), auth.SubjectFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, h.log, "create handover log", err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (h *HandoverHandler) Report(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.handoverService.Report(r.Context(), auth.SubjectFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, "build handover report", err)
		return
	}

	filename := fmt.Sprintf("handover-%s.pdf", time.Now().UTC().Format("20060102-1504"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
