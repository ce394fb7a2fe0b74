// Package mediasim fournit un élément média piloté par horloge :
// même surface que l'élément audio natif (play/pause/seek/timeupdate),
// sans sortie audio réelle.
package mediasim

import (
	"context"
	"sync"
	"time"
)

type Element struct {
	mu       sync.Mutex
	src      string
	duration float64
	position float64
	playing  bool

	onTime func(float64)
	onMeta func(float64)
}

func New(src string) *Element {
	return &Element{src: src}
}

func (e *Element) Src() string { return e.src }

// LoadMetadata fixe la durée et déclenche le callback loadedmetadata,
// comme l'élément natif une fois les métadonnées connues.
func (e *Element) LoadMetadata(duration float64) {
	if duration < 0 {
		duration = 0
	}
	e.mu.Lock()
	e.duration = duration
	fn := e.onMeta
	e.mu.Unlock()
	if fn != nil {
		fn(duration)
	}
}

func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	return nil
}

func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.playing
}

func (e *Element) Seek(seconds float64) {
	e.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.position = seconds
	e.mu.Unlock()
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) OnTimeUpdate(fn func(seconds float64)) {
	e.mu.Lock()
	e.onTime = fn
	e.mu.Unlock()
}

func (e *Element) OnLoadedMetadata(fn func(duration float64)) {
	e.mu.Lock()
	e.onMeta = fn
	e.mu.Unlock()
}

// Advance fait progresser l'horloge de d si la lecture est en cours et
// émet un timeupdate. En fin de fichier l'élément se met en pause seul,
// comme l'élément natif ; le tracker ne fait que refléter cet état.
func (e *Element) Advance(d time.Duration) {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.position += d.Seconds()
	if e.duration > 0 && e.position >= e.duration {
		e.position = e.duration
		e.playing = false
	}
	pos := e.position
	fn := e.onTime
	e.mu.Unlock()
	if fn != nil {
		fn(pos)
	}
}

// Run émet des timeupdate périodiques tant que le contexte vit.
// tick ≈ 250ms pour se rapprocher de la cadence native.
func (e *Element) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Advance(tick)
		}
	}
}
