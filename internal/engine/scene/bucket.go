package scene

import "github.com/Faultbox/railview/internal/engine/world"

// initialBucketCapacity matches the first allocation of every bucket; append
// doubles from there.
const initialBucketCapacity = 256

// FaceRef locates one face of a visible object.
type FaceRef struct {
	Object world.ObjectID
	Mesh   int
	Face   int
	// Slot is the owner's flat slot-table index (mesh-major, face-minor).
	Slot int
}

// faceList is a contiguous bucket: len(faces) is always the live count and
// keys[i] is the sort key of faces[i].
type faceList struct {
	bucket Bucket
	faces  []FaceRef
	keys   []float64
}

func newFaceList(b Bucket) *faceList {
	return &faceList{
		bucket: b,
		faces:  make([]FaceRef, 0, initialBucketCapacity),
		keys:   make([]float64, 0, initialBucketCapacity),
	}
}

func (l *faceList) len() int {
	return len(l.faces)
}

// add appends ref with a zero key and returns its index.
func (l *faceList) add(ref FaceRef) int {
	l.faces = append(l.faces, ref)
	l.keys = append(l.keys, 0)
	return len(l.faces) - 1
}

// removeAt deletes index i by moving the last entry into it. It returns the
// entry that now lives at i and whether such a move happened.
func (l *faceList) removeAt(i int) (moved FaceRef, ok bool) {
	last := len(l.faces) - 1
	if i != last {
		l.faces[i] = l.faces[last]
		l.keys[i] = l.keys[last]
		moved, ok = l.faces[i], true
	}
	l.faces[last] = FaceRef{}
	l.faces = l.faces[:last]
	l.keys = l.keys[:last]
	return moved, ok
}

// sort.Interface over the parallel arrays, ascending by key.

func (l *faceList) Len() int           { return len(l.faces) }
func (l *faceList) Less(i, j int) bool { return l.keys[i] < l.keys[j] }
func (l *faceList) Swap(i, j int) {
	l.faces[i], l.faces[j] = l.faces[j], l.faces[i]
	l.keys[i], l.keys[j] = l.keys[j], l.keys[i]
}
