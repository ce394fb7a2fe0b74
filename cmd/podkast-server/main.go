package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/catalog"
	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/buildinfo"
	"github.com/Guilhem-Bonnet/Podkast/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	def := config.Default()
	addr := flag.String("addr", def.Addr, "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "Chemin SQLite (ex: podkast.db)")
	catalogURL := flag.String("catalog", def.CatalogURL, "URL de la source de contenu")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "podkast-server").Logger()
	log.Logger = logger

	logger.Info().Interface("build", buildinfo.Current()).Str("db", *dbPath).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	defer bus.Close()

	notices := app.NewNoticeCenter(bus)

	profilesRepo := sqlite.NewProfilesRepository(db.SQL)
	sessionsRepo := sqlite.NewSessionsRepository(db.SQL)
	codesRepo := sqlite.NewLoginCodesRepository(db.SQL)
	accountsSvc := app.NewAccountService(logger, profilesRepo, sessionsRepo, codesRepo)

	source := catalog.NewClient().WithBaseURL(*catalogURL)
	catalogSvc := app.NewCatalogService(logger.With().Str("component", "catalog").Logger(), source)

	favouritesSvc := app.NewFavouritesService(sqlite.NewFavouritesRepository(db.SQL), bus)
	progressSvc := app.NewProgressService(sqlite.NewProgressRepository(db.SQL))

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Maintenance : purge sessions/codes périmés + refresh catalogue.
	maint := app.NewMaintenance(logger.With().Str("component", "maintenance").Logger(), sessionsRepo, codesRepo, catalogSvc)
	go maint.Run(shutdownCtx)

	// Pré-chauffe du cache catalogue, best-effort.
	if err := catalogSvc.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial catalog refresh failed")
	}

	srv := httpapi.NewServer(logger, accountsSvc, catalogSvc, favouritesSvc, progressSvc, notices, bus)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
