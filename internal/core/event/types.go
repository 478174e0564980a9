package event

// Event names published by the core. These form a stable contract with
// systems, scripts, and external collaborators.
const (
	Start        = "start"
	Stop         = "stop"
	Pause        = "pause"
	Resume       = "resume"
	Resize       = "resize"
	Collision    = "collision"
	EntityCreate = "entity:create"
	EntityRemove = "entity:remove"
)

// ResizePayload carries a viewport size change republished by the core when
// the renderer forwards one.
type ResizePayload struct {
	Width  int
	Height int
}
