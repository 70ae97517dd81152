package handler

import (
	"net/http"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type TagHandler struct {
	tagService service.ITagService
	log        *logger.Logger
}

func NewTagHandler(tagService service.ITagService, log *logger.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		log:        log,
	}
}

func (h *TagHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tags", h.List).Methods("GET")
	r.HandleFunc("/tags/{id}", h.Get).Methods("GET")
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.tagService.List())
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tag, err := h.tagService.Get(id)
	if err != nil {
		respondServiceError(w, h.log, "get tag", err)
		return
	}

	respondJSON(w, http.StatusOK, tag)
}
