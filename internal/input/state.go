package input

import "github.com/go-gl/mathgl/mgl64"

// Touch is one active touch point.
type Touch struct {
	ID       int
	Position mgl64.Vec2
}

// Provider is the polling surface systems and scripts query during their
// update. The core never pushes input events.
type Provider interface {
	KeyDown(key string) bool
	KeyPressed(key string) bool
	KeyReleased(key string) bool
	PointerPosition() mgl64.Vec2
	Touches() []Touch
	GamepadAxis(axis int) float64
	GamepadButton(button int) bool
}

// State is the default Provider: a latched snapshot of device state fed by
// whatever transport carries real input (the websocket viewer, a test, an
// embedding host). BeginFrame latches the previous frame's key state so
// pressed/released queries are exact for one frame.
var _ Provider = (*State)(nil)

type State struct {
	down map[string]bool
	prev map[string]bool

	pointer mgl64.Vec2
	touches []Touch
	axes    map[int]float64
	buttons map[int]bool
}

func NewState() *State {
	return &State{
		down:    make(map[string]bool),
		prev:    make(map[string]bool),
		axes:    make(map[int]float64),
		buttons: make(map[int]bool),
	}
}

// BeginFrame latches current key state as the previous frame's. The engine
// calls it once at the top of each frame, before any update runs.
func (s *State) BeginFrame() {
	for k := range s.prev {
		delete(s.prev, k)
	}
	for k, v := range s.down {
		s.prev[k] = v
	}
}

// SetKey records a key (or button) going down or up.
func (s *State) SetKey(key string, down bool) {
	if down {
		s.down[key] = true
	} else {
		delete(s.down, key)
	}
}

func (s *State) SetPointer(p mgl64.Vec2) { s.pointer = p }

func (s *State) SetTouches(touches []Touch) {
	s.touches = append(s.touches[:0], touches...)
}

func (s *State) SetGamepadAxis(axis int, value float64) { s.axes[axis] = value }

func (s *State) SetGamepadButton(button int, down bool) {
	if down {
		s.buttons[button] = true
	} else {
		delete(s.buttons, button)
	}
}

func (s *State) KeyDown(key string) bool { return s.down[key] }

// KeyPressed reports a key that went down since the previous frame.
func (s *State) KeyPressed(key string) bool { return s.down[key] && !s.prev[key] }

// KeyReleased reports a key that went up since the previous frame.
func (s *State) KeyReleased(key string) bool { return !s.down[key] && s.prev[key] }

func (s *State) PointerPosition() mgl64.Vec2 { return s.pointer }

func (s *State) Touches() []Touch { return s.touches }

func (s *State) GamepadAxis(axis int) float64 { return s.axes[axis] }

func (s *State) GamepadButton(button int) bool { return s.buttons[button] }
