package scene

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/world"
)

func TestHandlePacking(t *testing.T) {
	for _, b := range []Bucket{BucketOpaque, BucketTransparentColor, BucketAlpha, BucketOverlay} {
		for _, i := range []int{0, 1, 255, 1 << 20} {
			h := MakeHandle(b, i)
			assert.Equal(t, b, h.Bucket())
			assert.Equal(t, i, h.Index())
			assert.NotEqual(t, NoHandle, h)
		}
	}
	assert.Equal(t, "alpha[3]", MakeHandle(BucketAlpha, 3).String())
	assert.Equal(t, "none", NoHandle.String())
}

func TestClassify(t *testing.T) {
	tex := newFakeTextures()
	tex.add(1, 10, texture.TransparencyNone)
	tex.add(2, 20, texture.TransparencyAlpha)
	tex.add(3, 30, texture.TransparencyColorKey)

	glow := world.DefaultMaterial()
	glow.Glow = world.NewGlowAttenuation(world.GlowExponent2, 50)
	nightAlpha := texturedMaterial(3)
	nightAlpha.NightTexture = 2

	tests := []struct {
		name    string
		overlay bool
		mat     world.Material
		want    Bucket
	}{
		{"plain", false, opaqueMaterial(), BucketOpaque},
		{"opaque texture", false, texturedMaterial(1), BucketOpaque},
		{"overlay wins", true, translucentMaterial(10), BucketOverlay},
		{"translucent color", false, translucentMaterial(128), BucketAlpha},
		{"additive", false, additiveMaterial(), BucketAlpha},
		{"glow", false, glow, BucketAlpha},
		{"alpha texture", false, texturedMaterial(2), BucketAlpha},
		{"color key texture", false, texturedMaterial(3), BucketTransparentColor},
		{"alpha night beats color key day", false, nightAlpha, BucketAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.overlay, &tt.mat, tex)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Classify(tt.overlay, &tt.mat, tex), "classification must be deterministic")
		})
	}
}

func TestClassifySkipsMissingTextures(t *testing.T) {
	tex := newFakeTextures()
	mat := opaqueMaterial()
	assert.Equal(t, BucketOpaque, Classify(false, &mat, tex))
	assert.Zero(t, tex.queries)
}

func TestShowHideScenario(t *testing.T) {
	f := newFixture(DefaultOptions())
	a := f.add(false, buildMesh(
		[]world.Material{opaqueMaterial(), translucentMaterial(128)},
		tri{z: -5, mat: 0}, tri{z: -6, mat: 1},
	))
	b := f.add(true, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -1}))

	f.lists.ShowObject(a, false)
	f.lists.ShowObject(b, true)
	require.NoError(t, f.lists.Validate())
	assert.Equal(t, 1, f.lists.Len(BucketOpaque))
	assert.Equal(t, 0, f.lists.Len(BucketTransparentColor))
	assert.Equal(t, 1, f.lists.Len(BucketAlpha))
	assert.Equal(t, 1, f.lists.Len(BucketOverlay))

	f.lists.HideObject(a)
	require.NoError(t, f.lists.Validate())
	assert.Equal(t, 0, f.lists.Len(BucketOpaque))
	assert.Equal(t, 0, f.lists.Len(BucketAlpha))
	assert.Equal(t, 1, f.lists.Len(BucketOverlay))
	assert.False(t, f.lists.IsVisible(a))
	assert.Nil(t, f.lists.Handles(a))
}

func TestColorKeyedFaceLandsInTransparentColor(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.textures.add(7, 70, texture.TransparencyColorKey)
	id := f.add(false, buildMesh([]world.Material{texturedMaterial(7)}, tri{z: -3}))

	f.lists.ShowObject(id, false)
	assert.Equal(t, 1, f.lists.Len(BucketTransparentColor))
	assert.Equal(t, 0, f.lists.Len(BucketOpaque))
	assert.Equal(t, 0, f.lists.Len(BucketAlpha))
}

func TestShowHideIdempotent(t *testing.T) {
	f := newFixture(DefaultOptions())
	id := f.add(false, buildMesh([]world.Material{opaqueMaterial(), translucentMaterial(1)},
		tri{z: -1, mat: 0}, tri{z: -2, mat: 1}, tri{z: -3, mat: 0}))
	other := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -4}))

	f.lists.ShowObject(id, false)
	f.lists.ShowObject(other, false)
	before := [bucketCount][]FaceRef{}
	for b := range bucketCount {
		before[b] = slices.Clone(f.lists.Faces(Bucket(b)))
	}
	handles := f.lists.Handles(id)

	f.lists.ShowObject(id, false)
	f.lists.ShowObject(id, true)
	for b := range bucketCount {
		got := f.lists.Faces(Bucket(b))
		assert.True(t, slices.Equal(before[b], got), "bucket %s: %v, want %v", Bucket(b), got, before[b])
	}
	assert.Equal(t, handles, f.lists.Handles(id))

	f.lists.HideObject(id)
	after := f.lists.Stats()
	f.lists.HideObject(id)
	assert.Equal(t, after, f.lists.Stats())
	require.NoError(t, f.lists.Validate())
}

func TestShowUnknownObjectIgnored(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.lists.ShowObject(42, false)
	assert.False(t, f.lists.IsVisible(42))
	assert.Zero(t, f.lists.Stats().Visible)
}

func TestHideTouchesOnlyOwnFaces(t *testing.T) {
	f := newFixture(DefaultOptions())
	big := make([]tri, 1000)
	for i := range big {
		big[i] = tri{z: float32(-i - 1)}
	}
	bigID := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, big...))
	small := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -1}, tri{z: -2}, tri{z: -3}))
	after := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -9}, tri{z: -8}))

	f.lists.ShowObject(small, false)
	f.lists.ShowObject(bigID, false)
	f.lists.ShowObject(after, false)

	f.lists.HideObject(small)
	assert.Equal(t, 3, f.lists.Stats().LastHideTouched)
	assert.Equal(t, 1002, f.lists.Len(BucketOpaque))
	require.NoError(t, f.lists.Validate())

	f.lists.HideObject(bigID)
	assert.Equal(t, 1000, f.lists.Stats().LastHideTouched)
	assert.Equal(t, 2, f.lists.Len(BucketOpaque))
	require.NoError(t, f.lists.Validate())
}

func TestHideObjectWhoseFacesAreLast(t *testing.T) {
	f := newFixture(DefaultOptions())
	first := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -1}))
	last := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -2}, tri{z: -3}, tri{z: -4}))
	f.lists.ShowObject(first, false)
	f.lists.ShowObject(last, false)

	f.lists.HideObject(last)
	require.NoError(t, f.lists.Validate())
	assert.Equal(t, []FaceRef{{Object: first, Mesh: 0, Face: 0, Slot: 0}}, f.lists.Faces(BucketOpaque))
}

func TestRebuildReclassifies(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.textures.add(5, 50, texture.TransparencyNone)
	id := f.add(false, buildMesh([]world.Material{texturedMaterial(5)}, tri{z: -1}, tri{z: -2}))
	hud := f.add(true, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -1}))
	f.lists.ShowObject(id, false)
	f.lists.ShowObject(hud, true)
	require.Equal(t, 2, f.lists.Len(BucketOpaque))

	f.textures.transparency[5] = texture.TransparencyAlpha
	f.lists.Rebuild()
	require.NoError(t, f.lists.Validate())
	assert.Equal(t, 0, f.lists.Len(BucketOpaque))
	assert.Equal(t, 2, f.lists.Len(BucketAlpha))
	assert.Equal(t, 1, f.lists.Len(BucketOverlay))
	assert.Equal(t, []world.ObjectID{id, hud}, f.lists.VisibleObjects())
}

func TestValidateDetectsCorruption(t *testing.T) {
	f := newFixture(DefaultOptions())
	id := f.add(false, buildMesh([]world.Material{opaqueMaterial()}, tri{z: -1}, tri{z: -2}))
	f.lists.ShowObject(id, false)
	require.NoError(t, f.lists.Validate())

	f.lists.entries[id].slots[0], f.lists.entries[id].slots[1] = f.lists.entries[id].slots[1], f.lists.entries[id].slots[0]
	assert.Error(t, f.lists.Validate())
}

// TestRandomChurn drives random show, hide and sort sequences and checks
// coverage and handle consistency after every step.
func TestRandomChurn(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.textures.add(1, 11, texture.TransparencyColorKey)
	f.textures.add(2, 22, texture.TransparencyAlpha)
	palette := []world.Material{
		opaqueMaterial(),
		translucentMaterial(90),
		texturedMaterial(1),
		texturedMaterial(2),
		additiveMaterial(),
	}

	rng := rand.New(rand.NewPCG(7, 11))
	var ids []world.ObjectID
	for range 40 {
		var meshes []world.Mesh
		for range 1 + rng.IntN(3) {
			faces := make([]tri, rng.IntN(6))
			for i := range faces {
				faces[i] = tri{z: -1 - 50*rng.Float32(), mat: rng.IntN(len(palette) + 1)}
			}
			meshes = append(meshes, buildMesh(palette, faces...))
		}
		ids = append(ids, f.add(rng.IntN(8) == 0, meshes...))
	}

	for step := range 2000 {
		id := ids[rng.IntN(len(ids))]
		switch op := rng.IntN(10); {
		case op < 5:
			f.lists.ShowObject(id, f.store.Object(id).Overlay)
		case op < 9:
			f.lists.HideObject(id)
		default:
			f.camera.pos.X = 20*rng.Float32() - 10
			f.lists.SortBucket(Bucket(rng.IntN(bucketCount)), f.camera.pos)
		}

		require.NoError(t, f.lists.Validate(), "step %d", step)
		counts := f.counts()
		for _, id := range ids {
			want := 0
			if f.lists.IsVisible(id) {
				want = f.store.Object(id).FaceCount()
			}
			require.Equal(t, want, counts[id], "step %d object %d", step, id)
		}
	}
}
