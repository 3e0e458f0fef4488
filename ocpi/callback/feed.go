package callback

import (
	"emsp/internal"
	"emsp/ocpi/observer"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed broadcasts command events as JSON text frames to every connected websocket.
// A subscriber that cannot keep up loses messages rather than blocking callers.
type Feed struct {
	upgrader    websocket.Upgrader
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	logger      internal.LogHandler
}

func NewFeed(logger internal.LogHandler) *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[*subscriber]struct{}),
		logger:      internal.OrDiscard(logger),
	}
}

func (f *Feed) OnRequest(_ *observer.RequestEvent) {}

func (f *Feed) OnResponse(_ *observer.ResponseEvent) {}

func (f *Feed) OnCommand(event *observer.CommandEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("feed: encoding command event", err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subscribers {
		select {
		case sub.send <- data:
		default:
			f.logger.Warn(fmt.Sprintf("feed: subscriber %s is slow, event dropped", sub.conn.RemoteAddr()))
		}
	}
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subscribers {
		close(sub.send)
		delete(f.subscribers, sub)
	}
}

func (f *Feed) handleWsRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("feed: upgrade failed", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	f.mu.Unlock()
	f.logger.Debug(fmt.Sprintf("feed: subscriber connected from %s", r.RemoteAddr))

	go f.writePump(sub)
	go f.readPump(sub)
}

// readPump only watches for the peer going away.
func (f *Feed) readPump(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug(fmt.Sprintf("feed: subscriber %s closed: %v", sub.conn.RemoteAddr(), err))
			}
			f.remove(sub)
			return
		}
	}
}

func (f *Feed) writePump(sub *subscriber) {
	defer func() {
		_ = sub.conn.Close()
	}()
	for data := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.remove(sub)
			return
		}
	}
	_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (f *Feed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subscribers[sub]; ok {
		delete(f.subscribers, sub)
		close(sub.send)
	}
}
