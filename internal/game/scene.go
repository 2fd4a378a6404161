package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// sceneSet owns the loaded scene file and keeps the render lists in sync
// with it across reloads.
type sceneSet struct {
	path     string
	store    *world.Store
	textures *texture.Cache
	tracker  *world.Tracker
	log      *zap.Logger

	ids []world.ObjectID
}

// load reads the scene file and replaces the current objects. A file that
// fails to parse leaves the current scene untouched.
func (s *sceneSet) load() error {
	sf, err := world.LoadSceneFile(s.path)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}

	s.clear()
	s.textures.UnloadAll()
	s.ids = sf.Build(s.store, s.textures)

	registered, _ := s.textures.Stats()
	s.log.Info("scene loaded",
		zap.String("path", s.path),
		zap.Int("objects", len(s.ids)),
		zap.Int("textures", registered),
	)
	return nil
}

// clear hides every object and removes it from the store.
func (s *sceneSet) clear() {
	s.tracker.Reset()
	for _, id := range s.ids {
		if err := s.store.Remove(id); err != nil {
			s.log.Warn("removing object", zap.Error(err))
		}
	}
	s.ids = s.ids[:0]
}

// bounds returns a sphere around every non-overlay object.
func (s *sceneSet) bounds() (center math.Vec3, radius float32) {
	var lo, hi math.Vec3
	first := true
	s.store.Each(func(obj *world.Object) {
		if obj.Overlay {
			return
		}
		r := math.Vec3{X: obj.Radius, Y: obj.Radius, Z: obj.Radius}
		omin, omax := obj.Center.Sub(r), obj.Center.Add(r)
		if first {
			lo, hi, first = omin, omax, false
			return
		}
		lo = lo.Min(omin)
		hi = hi.Max(omax)
	})
	if first {
		return math.Vec3{}, 0
	}
	center = lo.Add(hi).Scale(0.5)
	return center, hi.Sub(center).Length()
}

// searchLoader reads texture files, falling back to the file's base name in
// each of dirs when the path itself does not exist.
func searchLoader(dirs []string) texture.Loader {
	return func(path string) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return data, err
		}
		base := filepath.Base(path)
		for _, dir := range dirs {
			if d, derr := os.ReadFile(filepath.Join(dir, base)); derr == nil {
				return d, nil
			}
		}
		return nil, err
	}
}
