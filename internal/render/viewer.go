package render

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/particle"
)

const viewerWriteTimeout = 5 * time.Second

// viewerMessage is the wire envelope sent to viewer clients.
type viewerMessage struct {
	Type      string          `json:"type"`
	Frame     *Frame          `json:"frame,omitempty"`
	Entity    string          `json:"entity,omitempty"`
	Particles *particleUpload `json:"particles,omitempty"`
}

type particleUpload struct {
	Batch  int              `json:"batch"`
	Points []particle.Point `json:"points"`
}

// clientMessage is the wire envelope read from viewer clients.
type clientMessage struct {
	Type   string  `json:"type"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Key    string  `json:"key,omitempty"`
	Down   bool    `json:"down,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// Viewer is a websocket renderer: it streams per-frame transforms and
// particle buffers to connected browser clients and queues their resize and
// input messages for the engine to drain on the frame goroutine.
//
// The frame goroutine only ever touches the inbox and the broadcast path;
// connection reads run on per-client goroutines.
type Viewer struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	inbox   []ClientEvent

	batchSeq int
}

func NewViewer(log *zap.Logger) *Viewer {
	return &Viewer{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start serves the viewer endpoint at /ws until the context is cancelled.
func (v *Viewer) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", v.handleWS)
	v.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v.server.Shutdown(shutdownCtx)
	}()

	v.log.Info("viewer listening", zap.String("addr", addr))
	go func() {
		if err := v.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			v.log.Error("viewer server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (v *Viewer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := v.upgrader.Upgrade(w, r, nil)
	if err != nil {
		v.log.Warn("viewer upgrade failed", zap.Error(err))
		return
	}
	v.mu.Lock()
	v.clients[conn] = struct{}{}
	v.mu.Unlock()
	v.log.Info("viewer connected", zap.String("remote", conn.RemoteAddr().String()))

	go v.readLoop(conn)
}

func (v *Viewer) readLoop(conn *websocket.Conn) {
	defer func() {
		v.mu.Lock()
		delete(v.clients, conn)
		v.mu.Unlock()
		conn.Close()
		v.log.Info("viewer disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			v.log.Warn("bad viewer message", zap.Error(err))
			continue
		}
		v.enqueue(msg)
	}
}

func (v *Viewer) enqueue(msg clientMessage) {
	var ev ClientEvent
	switch msg.Type {
	case "resize":
		ev.Resize = &ResizeEvent{Width: msg.Width, Height: msg.Height}
	case "key":
		ev.Key = &KeyEvent{Key: msg.Key, Down: msg.Down}
	case "pointer":
		ev.Pointer = &PointerEvent{X: msg.X, Y: msg.Y}
	default:
		return
	}
	v.mu.Lock()
	v.inbox = append(v.inbox, ev)
	v.mu.Unlock()
}

// Poll drains queued client events. Called once per frame by the engine.
func (v *Viewer) Poll() []ClientEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.inbox) == 0 {
		return nil
	}
	out := v.inbox
	v.inbox = nil
	return out
}

// Attach announces a new entity to connected clients.
func (v *Viewer) Attach(e *entity.Entity) {
	v.broadcast(&viewerMessage{Type: "attach", Entity: e.Name()})
}

// Detach announces an entity removal to connected clients.
func (v *Viewer) Detach(e *entity.Entity) {
	v.broadcast(&viewerMessage{Type: "detach", Entity: e.Name()})
}

// CreateBatch hands out a numbered draw-list handle; uploads are broadcast
// tagged with the batch number.
func (v *Viewer) CreateBatch() particle.Batch {
	v.batchSeq++
	return &viewerBatch{id: v.batchSeq, viewer: v}
}

// Present broadcasts the frame's entity transforms.
func (v *Viewer) Present(f *Frame) {
	v.broadcast(&viewerMessage{Type: "frame", Frame: f})
}

func (v *Viewer) broadcast(msg *viewerMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.clients) == 0 {
		return
	}
	for conn := range v.clients {
		conn.SetWriteDeadline(time.Now().Add(viewerWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			v.log.Warn("viewer write failed, dropping client", zap.Error(err))
			conn.Close()
			delete(v.clients, conn)
		}
	}
}

type viewerBatch struct {
	id     int
	viewer *Viewer
}

func (b *viewerBatch) Upload(points []particle.Point) {
	b.viewer.broadcast(&viewerMessage{
		Type:      "particles",
		Particles: &particleUpload{Batch: b.id, Points: points},
	})
}
