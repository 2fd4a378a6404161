package scene

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// SortBucket orders bucket b back to front as seen from eye and rewrites the
// owners' slot tables so every handle still resolves to its entry.
//
// A face with fewer than three usable corners, or a zero-length plane normal,
// keeps the key it had before (0 for a fresh entry).
func (l *Lists) SortBucket(b Bucket, eye math.Vec3) {
	list := l.buckets[b]
	if list.len() == 0 {
		return
	}
	for i, ref := range list.faces {
		mesh, _ := l.face(ref)
		if mesh == nil {
			continue
		}
		if key, ok := distanceKey(mesh, ref.Face, eye); ok {
			list.keys[i] = key
		}
	}
	sort.Stable(list)
	for i, ref := range list.faces {
		l.entries[ref.Object].slots[ref.Slot] = MakeHandle(b, i)
	}
}

// distanceKey returns -(n·(v0-eye))^2 for the plane through the face's first
// three corners.
func distanceKey(mesh *world.Mesh, face int, eye math.Vec3) (float64, bool) {
	v0, ok0 := mesh.Corner(face, 0)
	v1, ok1 := mesh.Corner(face, 1)
	v2, ok2 := mesh.Corner(face, 2)
	if !ok0 || !ok1 || !ok2 {
		return 0, false
	}
	nx, ny, nz := v1.Sub(v0).Cross(v2.Sub(v0)).Float64()
	lenSq := nx*nx + ny*ny + nz*nz
	if lenSq == 0 {
		return 0, false
	}
	dx, dy, dz := v0.Sub(eye).Float64()
	d := (nx*dx + ny*dy + nz*dz) / gomath.Sqrt(lenSq)
	return -d * d, true
}
