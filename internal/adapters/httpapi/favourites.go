package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/httpjson"
	"github.com/go-chi/chi/v5"
)

type FavouritesHandler struct {
	favourites *app.FavouritesService
}

func NewFavouritesHandler(favourites *app.FavouritesService) *FavouritesHandler {
	return &FavouritesHandler{favourites: favourites}
}

func (h *FavouritesHandler) Routes(r chi.Router) {
	r.Route("/favourites", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.add)
		r.Delete("/{episodeID}", h.remove)
	})
}

func (h *FavouritesHandler) list(w http.ResponseWriter, r *http.Request) {
	mode := domain.ParseSortMode(r.URL.Query().Get("sort"))
	favs, err := h.favourites.List(r.Context(), userID(r), mode)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, favs)
}

func (h *FavouritesHandler) add(w http.ResponseWriter, r *http.Request) {
	var req app.AddFavouriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	fav, err := h.favourites.Add(r.Context(), userID(r), req)
	if err != nil {
		if errors.Is(err, app.ErrConflict) {
			httpjson.WriteError(w, http.StatusConflict, "episode already favourited")
			return
		}
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, fav)
}

func (h *FavouritesHandler) remove(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	if err := h.favourites.Remove(r.Context(), userID(r), episodeID); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
