// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	// WheelY is the scroll amount of EventMouseWheel.
	WheelY float32
}

// Input handles all input processing and tracks held keys and buttons.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool

	buttons        map[uint8]bool
	dragX, dragY   float32
	wheel          float32
	lastX, lastY   int
	haveMousePoint bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		held:    make(map[sdl.Scancode]bool),
		buttons: make(map[uint8]bool),
	}
}

// Update polls SDL events and converts them to game events.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.dragX, i.dragY, i.wheel = 0, 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}

	return false
}

// handle records one SDL event and reports whether it asks to quit.
func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		i.held[e.Keysym.Scancode] = e.Type == sdl.KEYDOWN
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			i.events = append(i.events, Event{
				Type: EventKeyDown,
				Key:  e.Keysym.Scancode,
			})
		} else if e.Type == sdl.KEYUP {
			i.events = append(i.events, Event{
				Type: EventKeyUp,
				Key:  e.Keysym.Scancode,
			})
		}

	case *sdl.MouseMotionEvent:
		if i.haveMousePoint && i.buttons[sdl.BUTTON_LEFT] {
			i.dragX += float32(int(e.X) - i.lastX)
			i.dragY += float32(int(e.Y) - i.lastY)
		}
		i.lastX, i.lastY, i.haveMousePoint = int(e.X), int(e.Y), true
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		})

	case *sdl.MouseWheelEvent:
		i.wheel += float32(e.Y)
		i.events = append(i.events, Event{Type: EventMouseWheel, WheelY: float32(e.Y)})

	case *sdl.MouseButtonEvent:
		i.buttons[e.Button] = e.Type == sdl.MOUSEBUTTONDOWN
		if e.Type == sdl.MOUSEBUTTONDOWN {
			i.events = append(i.events, Event{
				Type:   EventMouseDown,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})
		} else if e.Type == sdl.MOUSEBUTTONUP {
			i.events = append(i.events, Event{
				Type:   EventMouseUp,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether a key is currently held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// Axis returns +1 when pos is held, -1 when neg is held, 0 for both or neither.
func (i *Input) Axis(pos, neg sdl.Scancode) float32 {
	var v float32
	if i.held[pos] {
		v++
	}
	if i.held[neg] {
		v--
	}
	return v
}

// Drag returns the left-button mouse drag since the last Update.
func (i *Input) Drag() (dx, dy float32) {
	return i.dragX, i.dragY
}

// Wheel returns the vertical scroll since the last Update.
func (i *Input) Wheel() float32 {
	return i.wheel
}
