package app

import (
	"context"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/zerolog"
)

// Maintenance purge périodiquement les sessions et codes de connexion
// périmés et rafraîchit le cache catalogue.
type Maintenance struct {
	logger   zerolog.Logger
	sessions ports.SessionRepository
	codes    ports.LoginCodeRepository
	catalog  *CatalogService

	TickInterval time.Duration
}

func NewMaintenance(logger zerolog.Logger, sessions ports.SessionRepository, codes ports.LoginCodeRepository, catalog *CatalogService) *Maintenance {
	return &Maintenance{
		logger:       logger,
		sessions:     sessions,
		codes:        codes,
		catalog:      catalog,
		TickInterval: 5 * time.Minute,
	}
}

func (m *Maintenance) Run(ctx context.Context) {
	interval := m.TickInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("maintenance stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Maintenance) tick(ctx context.Context) {
	now := time.Now().UTC()
	if m.sessions != nil {
		if n, err := m.sessions.DeleteExpired(ctx, now); err != nil {
			m.logger.Error().Err(err).Msg("session cleanup failed")
		} else if n > 0 {
			m.logger.Info().Int64("sessions", n).Msg("expired sessions purged")
		}
	}
	if m.codes != nil {
		if _, err := m.codes.DeleteExpired(ctx, now); err != nil {
			m.logger.Error().Err(err).Msg("login code cleanup failed")
		}
	}
	if m.catalog != nil {
		if err := m.catalog.Refresh(ctx); err != nil {
			// Le cache précédent reste servi.
			m.logger.Warn().Err(err).Msg("catalog refresh failed")
		}
	}
}
