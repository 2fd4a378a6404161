package scene

import (
	"errors"
	"fmt"
)

// Validate checks that the buckets and slot tables mirror each other: every
// live entry is referenced by exactly the slot that owns it, and every slot
// of a visible object points at a live entry naming that slot.
func (l *Lists) Validate() error {
	var errs []error
	for bi, list := range l.buckets {
		b := Bucket(bi)
		if len(list.keys) != len(list.faces) {
			errs = append(errs, fmt.Errorf("%s: %d keys for %d faces", b, len(list.keys), len(list.faces)))
		}
		for i, ref := range list.faces {
			e, ok := l.entries[ref.Object]
			if !ok {
				errs = append(errs, fmt.Errorf("%s[%d]: object %d is not visible", b, i, ref.Object))
				continue
			}
			if ref.Slot < 0 || ref.Slot >= len(e.slots) {
				errs = append(errs, fmt.Errorf("%s[%d]: slot %d out of range for object %d", b, i, ref.Slot, ref.Object))
				continue
			}
			if h := e.slots[ref.Slot]; h != MakeHandle(b, i) {
				errs = append(errs, fmt.Errorf("%s[%d]: object %d slot %d holds %s", b, i, ref.Object, ref.Slot, h))
			}
		}
	}

	for id, e := range l.entries {
		obj := l.objects.Object(id)
		if obj == nil {
			errs = append(errs, fmt.Errorf("object %d: visible but missing from the object source", id))
			continue
		}
		if n := obj.FaceCount(); n != len(e.slots) {
			errs = append(errs, fmt.Errorf("object %d: %d slots for %d faces", id, len(e.slots), n))
		}
		slot := 0
		for mi := range obj.Meshes {
			for fi := range obj.Meshes[mi].Faces {
				if slot >= len(e.slots) {
					break
				}
				h := e.slots[slot]
				list := l.buckets[h.Bucket()]
				switch {
				case h == NoHandle:
					errs = append(errs, fmt.Errorf("object %d slot %d: no handle", id, slot))
				case h.Index() >= list.len():
					errs = append(errs, fmt.Errorf("object %d slot %d: %s out of range", id, slot, h))
				default:
					ref := list.faces[h.Index()]
					if ref.Object != id || ref.Mesh != mi || ref.Face != fi || ref.Slot != slot {
						errs = append(errs, fmt.Errorf("object %d slot %d: %s holds %+v", id, slot, h, ref))
					}
				}
				slot++
			}
		}
	}
	return errors.Join(errs...)
}
