package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/httpjson"
	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	progress *app.ProgressService
}

func NewProgressHandler(progress *app.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) Routes(r chi.Router) {
	r.Route("/progress", func(r chi.Router) {
		r.Get("/{episodeID}", h.get)
		r.Put("/{episodeID}", h.put)
		r.Delete("/{episodeID}", h.delete)
	})
}

func (h *ProgressHandler) get(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	dto, err := h.progress.Get(r.Context(), userID(r), episodeID)
	if err != nil {
		// L'absence de ligne n'est pas une erreur applicative mais un
		// 404 propre : le client repart de zéro.
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "no progress")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}

type putProgressRequest struct {
	ProgressTime float64 `json:"progressTime"`
	Finished     bool    `json:"finished"`
}

func (h *ProgressHandler) put(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	var req putProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	dto, err := h.progress.Save(r.Context(), userID(r), episodeID, req.ProgressTime, req.Finished)
	if err != nil {
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}

func (h *ProgressHandler) delete(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	if err := h.progress.Clear(r.Context(), userID(r), episodeID); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
