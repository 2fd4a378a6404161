// Package world holds the scene object model consumed by the renderer:
// objects, meshes, faces and materials, plus the store and visibility
// tracker that drive show/hide notifications.
package world

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/railview/pkg/math"
)

// ObjectID identifies an object in the Store.
type ObjectID uint32

// TextureID indexes a texture registered with the texture cache.
type TextureID int32

// NoTexture marks an unused texture reference.
const NoTexture TextureID = -1

// ColorRGB is an 8-bit-per-channel color.
type ColorRGB struct {
	R, G, B uint8
}

// ColorRGBA is an 8-bit-per-channel color with alpha. A = 255 is fully opaque.
type ColorRGBA struct {
	R, G, B, A uint8
}

// Opaque reports whether the alpha channel is fully opaque.
func (c ColorRGBA) Opaque() bool {
	return c.A == 255
}

// White is the default material color.
var White = ColorRGBA{R: 255, G: 255, B: 255, A: 255}

// BlendMode selects how a material composites over the framebuffer.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdditive
)

// GlowMode selects the distance falloff curve of glow attenuation.
type GlowMode uint8

const (
	// GlowExponent2 fades with d^2 / (d^2 + h^2).
	GlowExponent2 GlowMode = iota
	// GlowExponent4 fades with d^4 / (d^4 + h^4).
	GlowExponent4
)

// maxGlowHalfDistance is the largest half distance the 12-bit glow field could hold.
const maxGlowHalfDistance = 4095

// GlowAttenuation describes a distance-based alpha falloff for self-lit materials.
// A zero HalfDistance disables it.
type GlowAttenuation struct {
	Mode         GlowMode `yaml:"mode"`
	HalfDistance float32  `yaml:"half_distance"`
}

// NewGlowAttenuation clamps halfDistance to [1, 4095] and rounds it to whole metres.
// A non-positive halfDistance yields a disabled attenuation.
func NewGlowAttenuation(mode GlowMode, halfDistance float32) GlowAttenuation {
	if halfDistance <= 0 {
		return GlowAttenuation{}
	}
	if halfDistance < 1 {
		halfDistance = 1
	} else if halfDistance > maxGlowHalfDistance {
		halfDistance = maxGlowHalfDistance
	}
	return GlowAttenuation{Mode: mode, HalfDistance: math32.Round(halfDistance)}
}

// Enabled reports whether the attenuation applies.
func (g GlowAttenuation) Enabled() bool {
	return g.HalfDistance > 0
}

// Factor returns the alpha multiplier for a face whose reference vertex is
// distanceSquared away from the eye.
func (g GlowAttenuation) Factor(distanceSquared float64) float64 {
	if !g.Enabled() {
		return 1
	}
	h := float64(g.HalfDistance)
	h *= h
	t := distanceSquared
	switch g.Mode {
	case GlowExponent2:
		return t / (t + h)
	case GlowExponent4:
		t *= t
		h *= h
		return t / (t + h)
	default:
		return 1
	}
}

// Material is the surface description shared by the faces of a mesh.
type Material struct {
	Color         ColorRGBA
	Emissive      *ColorRGB
	DayTexture    TextureID
	NightTexture  TextureID
	DayNightBlend uint8
	Blend         BlendMode
	Glow          GlowAttenuation
}

// DefaultMaterial returns an untextured opaque white material.
func DefaultMaterial() Material {
	return Material{
		Color:        White,
		DayTexture:   NoTexture,
		NightTexture: NoTexture,
	}
}

// Textures returns the day and night texture references.
func (m *Material) Textures() [2]TextureID {
	return [2]TextureID{m.DayTexture, m.NightTexture}
}

// FaceType is the primitive a face's vertex list describes.
type FaceType uint8

const (
	FacePolygon FaceType = iota
	FaceTriangles
	FaceTriangleStrip
	FaceQuads
	FaceQuadStrip
)

// Vertex is a mesh vertex.
type Vertex struct {
	Position math.Vec3
	TexCoord math.Vec2
}

// FaceVertex references a mesh vertex and carries the per-corner normal.
type FaceVertex struct {
	Index  int
	Normal math.Vec3
}

// Face is a drawable polygon of a mesh.
type Face struct {
	Vertices []FaceVertex
	Material int
	TwoSided bool
	Type     FaceType
}

// Mesh is an ordered list of faces sharing vertex and material tables.
type Mesh struct {
	Vertices  []Vertex
	Materials []Material
	Faces     []Face
}

// Material returns the material a face references, or the default material
// when the index is out of range.
func (m *Mesh) Material(face int) Material {
	k := m.Faces[face].Material
	if k < 0 || k >= len(m.Materials) {
		return DefaultMaterial()
	}
	return m.Materials[k]
}

// Corner returns the position of the n-th corner of a face. ok is false when
// the face has fewer corners or references a missing vertex.
func (m *Mesh) Corner(face, n int) (pos math.Vec3, ok bool) {
	f := &m.Faces[face]
	if n >= len(f.Vertices) {
		return math.Vec3{}, false
	}
	i := f.Vertices[n].Index
	if i < 0 || i >= len(m.Vertices) {
		return math.Vec3{}, false
	}
	return m.Vertices[i].Position, true
}

// Object is a renderable scene object.
type Object struct {
	ID     ObjectID
	Name   string
	Meshes []Mesh

	// Overlay objects are drawn in screen space after the world.
	Overlay bool
	// Center and Radius bound the object for visibility tests.
	Center math.Vec3
	Radius float32
}

// FaceCount returns the total number of faces over all meshes.
func (o *Object) FaceCount() int {
	n := 0
	for i := range o.Meshes {
		n += len(o.Meshes[i].Faces)
	}
	return n
}

// UpdateBounds recomputes Center and Radius from the mesh vertices.
func (o *Object) UpdateBounds() {
	var sum math.Vec3
	count := 0
	for i := range o.Meshes {
		for _, v := range o.Meshes[i].Vertices {
			sum = sum.Add(v.Position)
			count++
		}
	}
	if count == 0 {
		o.Center, o.Radius = math.Vec3{}, 0
		return
	}
	o.Center = sum.Scale(1 / float32(count))
	var r float32
	for i := range o.Meshes {
		for _, v := range o.Meshes[i].Vertices {
			if d := v.Position.Distance(o.Center); d > r {
				r = d
			}
		}
	}
	o.Radius = r
}
