package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"finmonitor_backend/internal/feature/alerts/domain/entity"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
)

// eventPayload はWebSocketへ流すJSONです。
type eventPayload struct {
	RuleID      string  `json:"rule_id"`
	Symbol      string  `json:"symbol"`
	Condition   string  `json:"condition"`
	Threshold   float64 `json:"threshold"`
	Price       float64 `json:"price"`
	TriggeredAt string  `json:"triggered_at"`
}

type session struct {
	ownerID string
	send    chan eventPayload
}

// Hub はオーナーごとにWebSocket購読者を保持し、発火イベントを
// 該当オーナーの全接続へ配送します。
//
// 配送はノンブロッキングです。バッファの詰まった遅い接続へは
// イベントを落とし、評価ループを待たせません。
type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[*session]struct{}
}

var _ Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[*session]struct{}),
	}
}

// AlertTriggered delivers the event to every session of the event's owner.
func (h *Hub) AlertTriggered(ctx context.Context, ev entity.Event) {
	payload := eventPayload{
		RuleID:      ev.RuleID,
		Symbol:      ev.Symbol,
		Condition:   string(ev.Condition),
		Threshold:   ev.Threshold,
		Price:       ev.Price,
		TriggeredAt: ev.TriggeredAt.UTC().Format(time.RFC3339),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		if s.ownerID != ev.OwnerID {
			continue
		}
		select {
		case s.send <- payload:
		default:
			slog.WarnContext(ctx, "dropping alert event for slow websocket client", "owner_id", ev.OwnerID)
		}
	}
}

// Handler は GET /ws/alerts を処理します。認証済みオーナーの接続を
// アップグレードし、切断までイベントを流し続けます。
func (h *Hub) Handler(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgradeが失敗した時点でレスポンスは書き込み済み
		return
	}

	s := &session{
		ownerID: jwtmw.OwnerID(c),
		send:    make(chan eventPayload, sendBuffer),
	}
	h.add(s)
	defer func() {
		h.remove(s)
		conn.Close()
	}()

	// 読み取りループは切断検知のためだけに回す
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for payload := range s.send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
}

// Close drops every session; pending sends are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		close(s.send)
		delete(h.sessions, s)
	}
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; ok {
		close(s.send)
		delete(h.sessions, s)
	}
}
