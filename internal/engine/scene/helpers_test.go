package scene

import (
	"fmt"

	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// tri describes a test triangle facing +Z at depth z using material mat.
type tri struct {
	z   float32
	mat int
}

func buildMesh(materials []world.Material, faces ...tri) world.Mesh {
	m := world.Mesh{Materials: materials}
	for _, f := range faces {
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices,
			world.Vertex{Position: math.Vec3{X: -1, Y: -1, Z: f.z}, TexCoord: math.Vec2{X: 0, Y: 0}},
			world.Vertex{Position: math.Vec3{X: 1, Y: -1, Z: f.z}, TexCoord: math.Vec2{X: 1, Y: 0}},
			world.Vertex{Position: math.Vec3{X: 0, Y: 1, Z: f.z}, TexCoord: math.Vec2{X: 0.5, Y: 1}},
		)
		n := math.Vec3{Z: 1}
		m.Faces = append(m.Faces, world.Face{
			Vertices: []world.FaceVertex{{Index: base, Normal: n}, {Index: base + 1, Normal: n}, {Index: base + 2, Normal: n}},
			Material: f.mat,
		})
	}
	return m
}

func opaqueMaterial() world.Material {
	return world.DefaultMaterial()
}

func translucentMaterial(a uint8) world.Material {
	m := world.DefaultMaterial()
	m.Color.A = a
	return m
}

func texturedMaterial(day world.TextureID) world.Material {
	m := world.DefaultMaterial()
	m.DayTexture = day
	return m
}

func additiveMaterial() world.Material {
	m := world.DefaultMaterial()
	m.Blend = world.BlendAdditive
	return m
}

type fakeTextures struct {
	transparency map[world.TextureID]texture.Transparency
	handles      map[world.TextureID]uint32
	queries      int
}

func newFakeTextures() *fakeTextures {
	return &fakeTextures{
		transparency: make(map[world.TextureID]texture.Transparency),
		handles:      make(map[world.TextureID]uint32),
	}
}

func (f *fakeTextures) add(id world.TextureID, handle uint32, t texture.Transparency) {
	f.handles[id] = handle
	f.transparency[id] = t
}

func (f *fakeTextures) Transparency(id world.TextureID) texture.Transparency {
	f.queries++
	return f.transparency[id]
}

func (f *fakeTextures) Resolve(id world.TextureID) (uint32, bool) {
	h, ok := f.handles[id]
	return h, ok
}

type fakeCamera struct {
	pos, dir, up math.Vec3
	speed        float32
}

func newFakeCamera() *fakeCamera {
	return &fakeCamera{dir: math.Vec3{Z: -1}, up: math.Vec3{Y: 1}}
}

func (c *fakeCamera) Eye() (pos, dir, up math.Vec3) {
	return c.pos, c.dir, c.up
}

func (c *fakeCamera) Speed() float32 {
	return c.speed
}

// drawCall is a polygon plus the backend state it was drawn with.
type drawCall struct {
	poly      Polygon
	caps      [capabilityCount]bool
	alpha     AlphaFunc
	blend     BlendFunc
	depthMask bool
	texture   uint32
}

type recordingBackend struct {
	log   []string
	draws []drawCall

	caps       [capabilityCount]bool
	alpha      AlphaFunc
	blend      BlendFunc
	depthMask  bool
	texture    uint32
	accumulate []float32
}

func (b *recordingBackend) record(format string, args ...any) {
	b.log = append(b.log, fmt.Sprintf(format, args...))
}

func (b *recordingBackend) Clear(c world.ColorRGB, color bool) {
	b.record("clear %v %v", c, color)
}

func (b *recordingBackend) SetCapability(c Capability, on bool) {
	b.caps[c] = on
	b.record("cap %s %v", c, on)
}

func (b *recordingBackend) SetDepthMask(on bool) {
	b.depthMask = on
	b.record("depth-mask %v", on)
}

func (b *recordingBackend) SetBlendFunc(f BlendFunc) {
	b.blend = f
	b.record("blend-func %d", f)
}

func (b *recordingBackend) SetAlphaFunc(f AlphaFunc) {
	b.alpha = f
	b.record("alpha-func %d %v", f.Compare, f.Ref)
}

func (b *recordingBackend) BindTexture(handle uint32) {
	b.texture = handle
	b.record("bind %d", handle)
}

func (b *recordingBackend) SetFog(f Fog) {
	b.record("fog %v %v", f.Start, f.End)
}

func (b *recordingBackend) SetLight(sun lighting.Sun) {
	b.record("light")
}

func (b *recordingBackend) SetEmission(c *world.ColorRGB) {
	b.record("emission %v", c != nil)
}

func (b *recordingBackend) BeginScenery(dir, up math.Vec3) {
	b.record("scenery")
}

func (b *recordingBackend) BeginOverlay() {
	b.record("overlay")
}

func (b *recordingBackend) DrawBackground(handle uint32) {
	b.record("background %d", handle)
}

func (b *recordingBackend) DrawPolygon(p *Polygon) {
	cp := *p
	cp.Vertices = append([]PolygonVertex(nil), p.Vertices...)
	b.draws = append(b.draws, drawCall{
		poly:      cp,
		caps:      b.caps,
		alpha:     b.alpha,
		blend:     b.blend,
		depthMask: b.depthMask,
		texture:   b.texture,
	})
	b.record("draw")
}

func (b *recordingBackend) Accumulate(factor float32) {
	b.accumulate = append(b.accumulate, factor)
	b.record("accumulate")
}

// fixture bundles a store, lists and pipeline over fakes.
type fixture struct {
	store    *world.Store
	textures *fakeTextures
	lists    *Lists
	backend  *recordingBackend
	camera   *fakeCamera
	pipeline *Pipeline
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		store:    world.NewStore(),
		textures: newFakeTextures(),
		backend:  &recordingBackend{},
		camera:   newFakeCamera(),
	}
	f.lists = NewLists(f.store, f.textures, nil)
	f.pipeline = NewPipeline(f.lists, f.backend, f.textures, f.camera, opts, nil)
	return f
}

func (f *fixture) add(overlay bool, meshes ...world.Mesh) world.ObjectID {
	return f.store.Add(&world.Object{Meshes: meshes, Overlay: overlay})
}

// counts returns how many entries each visible object owns across buckets.
func (f *fixture) counts() map[world.ObjectID]int {
	n := make(map[world.ObjectID]int)
	for b := range bucketCount {
		for _, ref := range f.lists.Faces(Bucket(b)) {
			n[ref.Object]++
		}
	}
	return n
}
