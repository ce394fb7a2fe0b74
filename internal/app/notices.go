package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/xid"
)

// DefaultNoticeTTL : les confirmations/erreurs transitoires expirent
// d'elles-mêmes après 3 secondes.
const DefaultNoticeTTL = 3 * time.Second

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// NoticeCenter stocke les messages transitoires et les publie sur le
// bus. Active() purge les messages expirés au passage.
type NoticeCenter struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]Notice
	bus   ports.EventBus
}

func NewNoticeCenter(bus ports.EventBus) *NoticeCenter {
	return &NoticeCenter{
		ttl:   DefaultNoticeTTL,
		now:   time.Now,
		items: make(map[string]Notice),
		bus:   bus,
	}
}

// WithClock injecte une horloge de test.
func (n *NoticeCenter) WithClock(now func() time.Time) *NoticeCenter {
	if now != nil {
		n.now = now
	}
	return n
}

func (n *NoticeCenter) Push(level NoticeLevel, message string) Notice {
	notice := Notice{
		ID:      xid.New().String(),
		Level:   level,
		Message: message,
	}
	n.mu.Lock()
	notice.ExpiresAt = n.now().Add(n.ttl)
	n.items[notice.ID] = notice
	n.mu.Unlock()

	if n.bus != nil {
		if b, err := json.Marshal(notice); err == nil {
			n.bus.Publish("notice", b)
		}
	}
	return notice
}

func (n *NoticeCenter) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	out := make([]Notice, 0, len(n.items))
	for id, notice := range n.items {
		if !notice.ExpiresAt.After(now) {
			delete(n.items, id)
			continue
		}
		out = append(out, notice)
	}
	return out
}
