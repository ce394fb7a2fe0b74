package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/zerolog"
)

const (
	defaultFlushInterval = 10 * time.Second
	defaultWriteTimeout  = 5 * time.Second
)

type TrackerConfig struct {
	Logger   zerolog.Logger
	Progress ports.ProgressRepository
	Media    ports.MediaElement
	Notices  *NoticeCenter
	// Guard est optionnel (intercepte la fermeture pendant la lecture).
	Guard ports.CloseGuard

	// FlushInterval : au plus un upsert distant par intervalle pendant
	// la lecture. Écrire à chaque timeupdate est exclu.
	FlushInterval time.Duration
	WriteTimeout  time.Duration
}

// Tracker synchronise la position de reprise d'un épisode entre
// l'horloge média locale et le store distant : une instance par
// (user, episode), démontée quand la sélection change.
//
// Machine d'écriture : Idle → PendingWrite (timer armé) → Idle. Le
// premier timeupdate arme le timer ; les suivants ne font que mettre à
// jour l'offset en attente. Au tir, le timer revalide la génération
// capturée avant de committer — un write périmé est jeté, pas commité.
type Tracker struct {
	logger   zerolog.Logger
	progress ports.ProgressRepository
	media    ports.MediaElement
	notices  *NoticeCenter
	guard    ports.CloseGuard

	flushInterval time.Duration
	writeTimeout  time.Duration

	mu            sync.Mutex
	userID        string
	episode       domain.EpisodeRef
	episodeID     string
	gen           int
	offset        float64
	duration      float64
	playing       bool
	loading       bool
	lastErr       error
	flushState    domain.FlushState
	timer         *time.Timer
	pendingOffset float64
}

func NewTracker(cfg TrackerConfig, userID string, episode domain.EpisodeRef) *Tracker {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	t := &Tracker{
		logger:        cfg.Logger.With().Str("episode_id", episode.Key()).Logger(),
		progress:      cfg.Progress,
		media:         cfg.Media,
		notices:       cfg.Notices,
		guard:         cfg.Guard,
		flushInterval: cfg.FlushInterval,
		writeTimeout:  cfg.WriteTimeout,
		userID:        userID,
		episode:       episode,
		episodeID:     episode.Key(),
		loading:       true,
		flushState:    domain.FlushIdle,
	}
	t.media.OnTimeUpdate(t.OnClockAdvance)
	t.media.OnLoadedMetadata(t.onLoadedMetadata)
	return t
}

// State est un instantané pour la couche d'affichage.
type State struct {
	EpisodeID string
	Offset    float64
	Duration  float64
	Playing   bool
	Loading   bool
	Err       error
}

func (s State) Position() string {
	return domain.FormatTimestamp(s.Offset) + " / " + domain.FormatTimestamp(s.Duration)
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		EpisodeID: t.episodeID,
		Offset:    t.offset,
		Duration:  t.duration,
		Playing:   t.playing,
		Loading:   t.loading,
		Err:       t.lastErr,
	}
}

// Load récupère la progression distante et cale l'horloge média dessus.
// L'absence de ligne est bénigne : reprise à zéro. Si la sélection a
// changé pendant l'aller-retour (génération bumpée par Teardown), le
// résultat périmé est jeté silencieusement.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	gen := t.gen
	userID, episodeID := t.userID, t.episodeID
	t.loading = true
	t.mu.Unlock()

	rec, err := t.progress.Get(ctx, userID, episodeID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return nil
	}
	t.loading = false

	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			t.offset = 0
			return nil
		}
		t.lastErr = err
		if t.notices != nil {
			t.notices.Push(NoticeError, "Could not load saved progress")
		}
		t.logger.Warn().Err(err).Msg("progress load failed")
		return remoteUnavailable("progress load failed", err)
	}

	t.offset = rec.ProgressTime
	t.media.Seek(rec.ProgressTime)
	return nil
}

// OnClockAdvance est branché sur timeupdate : mise à jour locale
// synchrone, sans I/O, puis armement éventuel du flush.
func (t *Tracker) OnClockAdvance(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.offset = seconds
	t.pendingOffset = seconds

	if t.flushState != domain.FlushIdle {
		return
	}
	if !domain.CanFlushTransition(t.flushState, domain.FlushPending) {
		return
	}
	t.flushState = domain.FlushPending
	gen := t.gen
	t.timer = time.AfterFunc(t.flushInterval, func() { t.flush(gen) })
}

// flush est le tir du timer : il revalide la génération capturée à
// l'armement avant d'écrire (un Teardown/Reset entre-temps l'annule).
func (t *Tracker) flush(gen int) {
	t.mu.Lock()
	if gen != t.gen || t.flushState != domain.FlushPending {
		t.mu.Unlock()
		return
	}
	t.flushState = domain.FlushIdle
	userID, episodeID := t.userID, t.episodeID
	offset := t.pendingOffset
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.writeTimeout)
	defer cancel()
	_, err := t.progress.Upsert(ctx, domain.ProgressRecord{
		UserID:       userID,
		EpisodeID:    episodeID,
		ProgressTime: offset,
	})
	if err != nil {
		// État local intact ; l'échec est signalé, jamais fatal.
		t.logger.Warn().Err(err).Float64("offset", offset).Msg("progress write failed")
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		if t.notices != nil {
			t.notices.Push(NoticeError, "Could not save progress")
		}
	}
}

// TogglePlayPause est un no-op tant que Load n'a pas abouti. Le flag
// playing est recalé sur l'état paused de l'élément après coup :
// l'élément fait foi.
func (t *Tracker) TogglePlayPause() {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return
	}
	wasPlaying := t.playing
	t.mu.Unlock()

	var err error
	if wasPlaying {
		err = t.media.Pause()
	} else {
		err = t.media.Play()
	}
	if err != nil {
		t.logger.Warn().Err(err).Msg("media toggle failed")
	}
	t.syncPlaying()
}

// syncPlaying recale le miroir sur l'élément et (dés)arme le garde de
// fermeture selon l'état effectif.
func (t *Tracker) syncPlaying() {
	paused := t.media.Paused()
	t.mu.Lock()
	t.playing = !paused
	playing := t.playing
	t.mu.Unlock()

	if t.guard == nil {
		return
	}
	if playing {
		t.guard.Arm()
	} else {
		t.guard.Disarm()
	}
}

// Reset remet la position à zéro localement, stoppe la lecture,
// supprime la ligne distante et pousse une confirmation transitoire.
// L'échec de suppression est signalé par une notice distincte, jamais
// avalé. No-op tant que le chargement initial n'a pas abouti.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return nil
	}
	// Annule toute écriture en attente : elle porterait un offset
	// antérieur au reset.
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.flushState = domain.FlushIdle
	t.offset = 0
	t.pendingOffset = 0
	userID, episodeID := t.userID, t.episodeID
	t.mu.Unlock()

	t.media.Seek(0)
	if err := t.media.Pause(); err != nil {
		t.logger.Warn().Err(err).Msg("media pause failed")
	}
	t.syncPlaying()

	err := t.progress.Delete(ctx, userID, episodeID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		if t.notices != nil {
			t.notices.Push(NoticeError, "Could not reset progress")
		}
		t.logger.Warn().Err(err).Msg("progress reset failed")
		return remoteUnavailable("progress reset failed", err)
	}
	if t.notices != nil {
		t.notices.Push(NoticeInfo, "Progress reset")
	}
	return nil
}

// Teardown démonte l'instance : timer annulé (sinon un write périmé
// pourrait atterrir après réaffectation de l'élément), génération
// bumpée pour jeter tout Load encore en vol, garde désarmé, callbacks
// détachés. L'élément est mis en pause avant de changer de mains.
func (t *Tracker) Teardown() {
	t.mu.Lock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.flushState = domain.FlushIdle
	t.playing = false
	t.mu.Unlock()

	_ = t.media.Pause()
	t.media.OnTimeUpdate(nil)
	t.media.OnLoadedMetadata(nil)
	if t.guard != nil {
		t.guard.Disarm()
	}
}

func (t *Tracker) onLoadedMetadata(duration float64) {
	t.mu.Lock()
	t.duration = duration
	t.mu.Unlock()
}
