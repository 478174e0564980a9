package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/particle"
)

// EntityState is one entity's post-physics transform for a frame.
type EntityState struct {
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

// Frame is the per-frame payload the core hands to the renderer at the frame
// sequence's render point.
type Frame struct {
	Number   uint64        `json:"number"`
	Elapsed  float64       `json:"elapsed"`
	Entities []EntityState `json:"entities"`
}

// ClientEvent is a message a renderer client sent back toward the core. The
// engine drains these on the frame goroutine: resizes are republished on the
// event bus, input is fed to the input state.
type ClientEvent struct {
	Resize  *ResizeEvent
	Key     *KeyEvent
	Pointer *PointerEvent
}

type ResizeEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type KeyEvent struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
}

type PointerEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Renderer is the external drawing backend contract. The core notifies it of
// entity lifecycle, hands it transforms and particle buffers once per frame,
// and drains whatever its clients sent back. It never calls into the core.
type Renderer interface {
	Attach(e *entity.Entity)
	Detach(e *entity.Entity)

	// CreateBatch hands out a draw-list handle for one emitter's pool.
	CreateBatch() particle.Batch

	// Present delivers the frame for drawing.
	Present(f *Frame)

	// Poll returns client events received since the last call.
	Poll() []ClientEvent
}

// Noop is the headless renderer used by tests and server-side runs.
type Noop struct{}

func (Noop) Attach(*entity.Entity)       {}
func (Noop) Detach(*entity.Entity)       {}
func (Noop) CreateBatch() particle.Batch { return noopBatch{} }
func (Noop) Present(*Frame)              {}
func (Noop) Poll() []ClientEvent         { return nil }

type noopBatch struct{}

func (noopBatch) Upload([]particle.Point) {}
