package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Event describes a change pushed by the database. Ref is the id of the
// aggregate to refresh: a booking id for bookings, a chat id for both chats
// and messages.
type Event struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	Ref   string `json:"ref"`
}

// Subscription delivers events on C until Close is called. After Close
// returns, no further events are delivered and C is closed.
type Subscription struct {
	C <-chan Event

	hub *Hub
	id  int64
	ch  chan Event
}

// Close отписывается от хаба. Гарантирует отсутствие доставки после возврата.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// Hub fans events out to in-process subscriptions.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]chan Event
	nextID int64
	closed bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[int64]chan Event),
		logger: logger,
	}
}

// Subscribe регистрирует нового подписчика
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	if h.closed {
		close(ch)
		return &Subscription{C: ch, hub: h, id: -1, ch: ch}
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = ch

	return &Subscription{C: ch, hub: h, id: id, ch: ch}
}

// Publish рассылает событие всем подписчикам. Медленный подписчик с полным
// буфером пропускает событие — снапшоты всё равно пересобираются целиком
// на каждом следующем событии.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Dropping event for slow subscriber",
				zap.Int64("subscriber_id", id),
				zap.String("table", ev.Table),
			)
		}
	}
}

// Close закрывает хаб и все подписки
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) unsubscribe(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}
