package httpapi

import (
	"errors"
	"net/http"

	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/httpjson"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog *app.CatalogService
}

func NewCatalogHandler(catalog *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Routes(r chi.Router) {
	r.Route("/shows", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{showID}", h.get)
	})
	r.Get("/genres", h.genres)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := app.ShowQuery{
		Search: r.URL.Query().Get("search"),
		Genre:  r.URL.Query().Get("genre"),
		Sort:   domain.ParseSortMode(r.URL.Query().Get("sort")),
	}
	shows, err := h.catalog.Shows(r.Context(), q)
	if err != nil {
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, shows)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showID")
	detail, err := h.catalog.ShowDetail(r.Context(), showID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		writeCodedError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, detail)
}

func (h *CatalogHandler) genres(w http.ResponseWriter, r *http.Request) {
	out := make(map[int]string, domain.GenreCount())
	for id := 1; id <= domain.GenreCount(); id++ {
		out[id] = domain.GenreName(id)
	}
	httpjson.Write(w, http.StatusOK, out)
}
