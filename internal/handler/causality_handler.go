package handler

import (
	"fmt"
	"io"
	"net/http"

	"FCCMonitorAPI/internal/auth"
	"FCCMonitorAPI/internal/causality"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/middleware"
	"FCCMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type CausalityHandler struct {
	causalityService service.ICausalityService
	log              *logger.Logger
}

func NewCausalityHandler(causalityService service.ICausalityService, log *logger.Logger) *CausalityHandler {
	return &CausalityHandler{
		causalityService: causalityService,
		log:              log,
	}
}

func (h *CausalityHandler) RegisterRoutes(r *mux.Router) {
	engineer := middleware.RequireRole(auth.RoleEngineer)

	r.HandleFunc("/causality/chain/{id}", h.Chain).Methods("GET")
	r.HandleFunc("/causality/graph", h.Export).Methods("GET")
	r.Handle("/causality/graph", engineer(http.HandlerFunc(h.Import))).Methods("PUT")
	r.Handle("/causality/graph", engineer(http.HandlerFunc(h.Reset))).Methods("DELETE")
}

func (h *CausalityHandler) Chain(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.causalityService.Chain(mux.Vars(r)["id"]))
}

func (h *CausalityHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.causalityService.Export()
	if err != nil {
		respondServiceError(w, h.log, "export causality graph", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="causality-graph.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *CausalityHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(data) == 0 {
		respondServiceError(w, h.log, "import causality graph", fmt.Errorf("%w: empty body", causality.ErrInvalidGraph))
		return
	}

	summary, err := h.causalityService.Import(r.Context(), data)
	if err != nil {
		respondServiceError(w, h.log, "import causality graph", err)
		return
	}

	h.log.Info("Causality graph %s imported by %s (%d links)",
		summary.Version, auth.SubjectFromContext(r.Context()), summary.Links)
	respondJSON(w, http.StatusOK, summary)
}

func (h *CausalityHandler) Reset(w http.ResponseWriter, r *http.Request) {
	summary, err := h.causalityService.Reset(r.Context())
	if err != nil {
		respondServiceError(w, h.log, "reset causality graph", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
