package world

import (
	"go.uber.org/zap"

	"github.com/Faultbox/railview/pkg/math"
)

// VisibilityListener receives visibility changes. The render lists implement it.
type VisibilityListener interface {
	ShowObject(id ObjectID, overlay bool)
	HideObject(id ObjectID)
}

// Tracker decides which objects are within viewing distance of the camera
// and notifies a listener when that changes.
type Tracker struct {
	store    *Store
	listener VisibilityListener
	log      *zap.Logger

	// ViewingDistance is the distance beyond which world objects are hidden.
	// Overlay objects are always visible.
	ViewingDistance float32

	// shown maps visible IDs to the object they were shown for, so a
	// removed or replaced object is hidden even when its ID was reused.
	shown map[ObjectID]*Object
}

// NewTracker creates a tracker over store that notifies listener.
func NewTracker(store *Store, listener VisibilityListener, viewingDistance float32, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		store:           store,
		listener:        listener,
		log:             log,
		ViewingDistance: viewingDistance,
		shown:           make(map[ObjectID]*Object),
	}
}

// Update shows objects that entered and hides objects that left the viewing
// sphere around eye. Objects removed from the store without Forget are hidden
// too. It returns how many notifications were sent.
func (t *Tracker) Update(eye math.Vec3) int {
	changes := 0
	for id, obj := range t.shown {
		if t.store.Object(id) != obj {
			t.listener.HideObject(id)
			delete(t.shown, id)
			changes++
		}
	}
	t.store.Each(func(obj *Object) {
		want := obj.Overlay || obj.Center.Distance(eye)-obj.Radius <= t.ViewingDistance
		if want == (t.shown[obj.ID] != nil) {
			return
		}
		if want {
			t.listener.ShowObject(obj.ID, obj.Overlay)
			t.shown[obj.ID] = obj
		} else {
			t.listener.HideObject(obj.ID)
			delete(t.shown, obj.ID)
		}
		changes++
	})
	if changes > 0 {
		t.log.Debug("visibility changed", zap.Int("changes", changes), zap.Int("visible", len(t.shown)))
	}
	return changes
}

// Forget hides id if it is shown and stops tracking it. Call before Store.Remove.
func (t *Tracker) Forget(id ObjectID) {
	if t.shown[id] != nil {
		t.listener.HideObject(id)
		delete(t.shown, id)
	}
}

// Reset hides every shown object.
func (t *Tracker) Reset() {
	for id := range t.shown {
		t.listener.HideObject(id)
	}
	clear(t.shown)
}
