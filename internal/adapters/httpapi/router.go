package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type Server struct {
	logger     zerolog.Logger
	accounts   *app.AccountService
	catalog    *app.CatalogService
	favourites *app.FavouritesService
	progress   *app.ProgressService
	notices    *app.NoticeCenter
	bus        ports.EventBus
}

func NewServer(logger zerolog.Logger, accounts *app.AccountService, catalog *app.CatalogService, favourites *app.FavouritesService, progress *app.ProgressService, notices *app.NoticeCenter, bus ports.EventBus) *Server {
	return &Server{
		logger:     logger,
		accounts:   accounts,
		catalog:    catalog,
		favourites: favourites,
		progress:   progress,
		notices:    notices,
		bus:        bus,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/events", s.handleEvents)
		r.Get("/notices", s.handleNotices)

		if s.catalog != nil {
			NewCatalogHandler(s.catalog).Routes(r)
		}
		if s.accounts != nil {
			NewAuthHandler(s.accounts).Routes(r)
		}

		// Routes nécessitant une session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			if s.accounts != nil {
				NewProfileHandler(s.accounts).Routes(r)
			}
			if s.favourites != nil {
				NewFavouritesHandler(s.favourites).Routes(r)
			}
			if s.progress != nil {
				NewProgressHandler(s.progress).Routes(r)
			}
		})
	})

	return r
}
