// Package scene is the render-list core: it sorts the faces of visible
// objects into render buckets, keeps the buckets compact as objects are
// shown and hidden, orders translucent buckets by camera distance and draws
// them through a state-caching fixed-function pipeline.
package scene

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/engine/world"
)

// ObjectSource resolves object records. world.Store implements it.
type ObjectSource interface {
	Object(id world.ObjectID) *world.Object
}

// objectEntry exists only while an object is visible.
type objectEntry struct {
	overlay bool
	slots   []Handle
}

// Stats summarises the lists.
type Stats struct {
	Visible int
	Faces   [bucketCount]int

	// LastShowTouched and LastHideTouched count the bucket slots written by
	// the most recent ShowObject and HideObject.
	LastShowTouched int
	LastHideTouched int
}

// Lists owns the four buckets and the per-object slot tables.
type Lists struct {
	objects  ObjectSource
	textures TransparencySource
	log      *zap.Logger

	buckets [bucketCount]*faceList
	entries map[world.ObjectID]*objectEntry

	lastShowTouched int
	lastHideTouched int
}

// NewLists creates empty render lists.
func NewLists(objects ObjectSource, textures TransparencySource, log *zap.Logger) *Lists {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Lists{
		objects:  objects,
		textures: textures,
		log:      log,
		entries:  make(map[world.ObjectID]*objectEntry),
	}
	for b := range l.buckets {
		l.buckets[b] = newFaceList(Bucket(b))
	}
	return l
}

// ShowObject adds every face of an object to its bucket. It does nothing if
// the object is already visible or unknown.
func (l *Lists) ShowObject(id world.ObjectID, overlay bool) {
	if _, ok := l.entries[id]; ok {
		return
	}
	obj := l.objects.Object(id)
	if obj == nil {
		l.log.Debug("show of unknown object ignored", zap.Uint32("object", uint32(id)))
		return
	}

	e := &objectEntry{
		overlay: overlay,
		slots:   make([]Handle, obj.FaceCount()),
	}
	slot := 0
	for mi := range obj.Meshes {
		mesh := &obj.Meshes[mi]
		for fi := range mesh.Faces {
			mat := mesh.Material(fi)
			b := Classify(overlay, &mat, l.textures)
			idx := l.buckets[b].add(FaceRef{Object: id, Mesh: mi, Face: fi, Slot: slot})
			e.slots[slot] = MakeHandle(b, idx)
			slot++
		}
	}
	l.entries[id] = e
	l.lastShowTouched = slot
}

// HideObject removes every face of an object from the buckets. Each face is
// removed by moving its bucket's last entry into the hole, so the cost is
// proportional to the object's face count only.
func (l *Lists) HideObject(id world.ObjectID) {
	e, ok := l.entries[id]
	if !ok {
		return
	}
	for i := range e.slots {
		// Re-read each iteration: an earlier removal may have moved one of
		// this object's own faces and rewritten its slot.
		h := e.slots[i]
		list := l.buckets[h.Bucket()]
		if moved, ok := list.removeAt(h.Index()); ok {
			l.entries[moved.Object].slots[moved.Slot] = h
		}
		e.slots[i] = NoHandle
	}
	l.lastHideTouched = len(e.slots)
	delete(l.entries, id)
}

// Rebuild hides and re-shows every visible object, reclassifying all faces.
// Use it after texture transparency or classification inputs changed.
func (l *Lists) Rebuild() {
	visible := l.VisibleObjects()
	overlay := make([]bool, len(visible))
	for i, id := range visible {
		overlay[i] = l.entries[id].overlay
		l.HideObject(id)
	}
	for i, id := range visible {
		l.ShowObject(id, overlay[i])
	}
	l.log.Debug("render lists rebuilt", zap.Int("objects", len(visible)))
}

// IsVisible reports whether an object is in the lists.
func (l *Lists) IsVisible(id world.ObjectID) bool {
	_, ok := l.entries[id]
	return ok
}

// VisibleObjects returns the visible object IDs in ascending order.
func (l *Lists) VisibleObjects() []world.ObjectID {
	ids := make([]world.ObjectID, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Handles returns a copy of an object's slot table, or nil when hidden.
func (l *Lists) Handles(id world.ObjectID) []Handle {
	e, ok := l.entries[id]
	if !ok {
		return nil
	}
	return slices.Clone(e.slots)
}

// Len returns the number of faces in bucket b.
func (l *Lists) Len(b Bucket) int {
	return l.buckets[b].len()
}

// Faces returns the entries of bucket b in draw order. The slice is owned by
// the lists and is only valid until the next mutation.
func (l *Lists) Faces(b Bucket) []FaceRef {
	return l.buckets[b].faces
}

// Key returns the current sort key of entry i in bucket b.
func (l *Lists) Key(b Bucket, i int) float64 {
	return l.buckets[b].keys[i]
}

// Stats returns current counters.
func (l *Lists) Stats() Stats {
	s := Stats{
		Visible:         len(l.entries),
		LastShowTouched: l.lastShowTouched,
		LastHideTouched: l.lastHideTouched,
	}
	for b, list := range l.buckets {
		s.Faces[b] = list.len()
	}
	return s
}

// face returns the mesh and face a FaceRef points at, or nil if the object
// record is gone.
func (l *Lists) face(ref FaceRef) (*world.Mesh, *world.Face) {
	obj := l.objects.Object(ref.Object)
	if obj == nil {
		return nil, nil
	}
	mesh := &obj.Meshes[ref.Mesh]
	return mesh, &mesh.Faces[ref.Face]
}
