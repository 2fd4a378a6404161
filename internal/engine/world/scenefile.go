package world

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/railview/pkg/math"
)

// SceneFile is the YAML description of a static scene: textures and objects.
type SceneFile struct {
	Textures []TextureDesc `yaml:"textures"`
	Objects  []ObjectDesc  `yaml:"objects"`

	// dir is the directory the file was read from; texture paths are relative to it.
	dir string
}

// TextureDesc names a texture file and its optional color key.
type TextureDesc struct {
	Name             string    `yaml:"name"`
	Path             string    `yaml:"path"`
	TransparentColor *[3]uint8 `yaml:"transparent_color,omitempty"`
}

// ObjectDesc describes one object.
type ObjectDesc struct {
	Name    string     `yaml:"name"`
	Overlay bool       `yaml:"overlay"`
	Meshes  []MeshDesc `yaml:"meshes"`
}

// MeshDesc describes one mesh.
type MeshDesc struct {
	Vertices  []VertexDesc   `yaml:"vertices"`
	Materials []MaterialDesc `yaml:"materials"`
	Faces     []FaceDesc     `yaml:"faces"`
}

// VertexDesc is a vertex position with optional texture coordinates.
type VertexDesc struct {
	Pos [3]float32 `yaml:"pos"`
	UV  [2]float32 `yaml:"uv"`
}

// MaterialDesc describes a material. Texture fields name entries of SceneFile.Textures.
type MaterialDesc struct {
	Color         *[4]uint8 `yaml:"color,omitempty"`
	Emissive      *[3]uint8 `yaml:"emissive,omitempty"`
	DayTexture    string    `yaml:"day_texture"`
	NightTexture  string    `yaml:"night_texture"`
	DayNightBlend uint8     `yaml:"day_night_blend"`
	Blend         string    `yaml:"blend"`
	Glow          *GlowDesc `yaml:"glow,omitempty"`
}

// GlowDesc describes glow attenuation.
type GlowDesc struct {
	Mode         string  `yaml:"mode"`
	HalfDistance float32 `yaml:"half_distance"`
}

// FaceDesc describes one face.
type FaceDesc struct {
	Vertices []int  `yaml:"vertices"`
	Material int    `yaml:"material"`
	TwoSided bool   `yaml:"two_sided"`
	Type     string `yaml:"type"`
}

// TextureRegistrar registers a texture file with the texture cache.
type TextureRegistrar interface {
	Register(path string, key *ColorRGB) TextureID
}

// LoadSceneFile reads and parses a scene description.
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sf, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	sf.dir = filepath.Dir(path)
	return sf, nil
}

// ParseScene parses a scene description from YAML.
func ParseScene(data []byte) (*SceneFile, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	if err := sf.validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

func (sf *SceneFile) validate() error {
	names := make(map[string]bool, len(sf.Textures))
	for _, t := range sf.Textures {
		if t.Name == "" || t.Path == "" {
			return fmt.Errorf("texture %q: name and path are required", t.Name)
		}
		names[t.Name] = true
	}
	for _, o := range sf.Objects {
		for mi, m := range o.Meshes {
			for _, mat := range m.Materials {
				if _, err := parseBlend(mat.Blend); err != nil {
					return fmt.Errorf("object %q mesh %d: %w", o.Name, mi, err)
				}
				if mat.Glow != nil {
					if _, err := parseGlowMode(mat.Glow.Mode); err != nil {
						return fmt.Errorf("object %q mesh %d: %w", o.Name, mi, err)
					}
				}
				for _, tex := range []string{mat.DayTexture, mat.NightTexture} {
					if tex != "" && !names[tex] {
						return fmt.Errorf("object %q mesh %d: unknown texture %q", o.Name, mi, tex)
					}
				}
			}
			for fi, f := range m.Faces {
				if _, err := parseFaceType(f.Type); err != nil {
					return fmt.Errorf("object %q mesh %d face %d: %w", o.Name, mi, fi, err)
				}
				for _, v := range f.Vertices {
					if v < 0 || v >= len(m.Vertices) {
						return fmt.Errorf("object %q mesh %d face %d: vertex %d out of range", o.Name, mi, fi, v)
					}
				}
			}
		}
	}
	return nil
}

// Build registers the scene's textures and adds its objects to store.
// It returns the IDs of the created objects in file order.
func (sf *SceneFile) Build(store *Store, textures TextureRegistrar) []ObjectID {
	texIDs := make(map[string]TextureID, len(sf.Textures))
	for _, t := range sf.Textures {
		var key *ColorRGB
		if t.TransparentColor != nil {
			c := *t.TransparentColor
			key = &ColorRGB{R: c[0], G: c[1], B: c[2]}
		}
		path := t.Path
		if sf.dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(sf.dir, path)
		}
		texIDs[t.Name] = textures.Register(path, key)
	}
	lookup := func(name string) TextureID {
		if name == "" {
			return NoTexture
		}
		return texIDs[name]
	}

	ids := make([]ObjectID, 0, len(sf.Objects))
	for _, od := range sf.Objects {
		obj := &Object{Name: od.Name, Overlay: od.Overlay}
		for _, md := range od.Meshes {
			obj.Meshes = append(obj.Meshes, buildMesh(md, lookup))
		}
		ids = append(ids, store.Add(obj))
	}
	return ids
}

func buildMesh(md MeshDesc, lookup func(string) TextureID) Mesh {
	m := Mesh{
		Vertices:  make([]Vertex, len(md.Vertices)),
		Materials: make([]Material, len(md.Materials)),
		Faces:     make([]Face, len(md.Faces)),
	}
	for i, v := range md.Vertices {
		m.Vertices[i] = Vertex{
			Position: math.Vec3{X: v.Pos[0], Y: v.Pos[1], Z: v.Pos[2]},
			TexCoord: math.Vec2{X: v.UV[0], Y: v.UV[1]},
		}
	}
	for i, d := range md.Materials {
		mat := DefaultMaterial()
		if d.Color != nil {
			c := *d.Color
			mat.Color = ColorRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
		}
		if d.Emissive != nil {
			c := *d.Emissive
			mat.Emissive = &ColorRGB{R: c[0], G: c[1], B: c[2]}
		}
		mat.DayTexture = lookup(d.DayTexture)
		mat.NightTexture = lookup(d.NightTexture)
		mat.DayNightBlend = d.DayNightBlend
		mat.Blend, _ = parseBlend(d.Blend)
		if d.Glow != nil {
			mode, _ := parseGlowMode(d.Glow.Mode)
			mat.Glow = NewGlowAttenuation(mode, d.Glow.HalfDistance)
		}
		m.Materials[i] = mat
	}
	for i, d := range md.Faces {
		ft, _ := parseFaceType(d.Type)
		f := Face{
			Vertices: make([]FaceVertex, len(d.Vertices)),
			Material: d.Material,
			TwoSided: d.TwoSided,
			Type:     ft,
		}
		normal := faceNormal(m.Vertices, d.Vertices)
		for j, vi := range d.Vertices {
			f.Vertices[j] = FaceVertex{Index: vi, Normal: normal}
		}
		m.Faces[i] = f
	}
	return m
}

// faceNormal returns the flat normal of the first three corners, or +Y for
// degenerate faces.
func faceNormal(verts []Vertex, idx []int) math.Vec3 {
	up := math.Vec3{Y: 1}
	if len(idx) < 3 {
		return up
	}
	v0 := verts[idx[0]].Position
	n := verts[idx[1]].Position.Sub(v0).Cross(verts[idx[2]].Position.Sub(v0))
	if n.LengthSquared() == 0 {
		return up
	}
	return n.Normalize()
}

func parseBlend(s string) (BlendMode, error) {
	switch s {
	case "", "normal":
		return BlendNormal, nil
	case "additive":
		return BlendAdditive, nil
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

func parseGlowMode(s string) (GlowMode, error) {
	switch s {
	case "", "exponent2":
		return GlowExponent2, nil
	case "exponent4":
		return GlowExponent4, nil
	}
	return GlowExponent2, fmt.Errorf("unknown glow mode %q", s)
}

func parseFaceType(s string) (FaceType, error) {
	switch s {
	case "", "polygon":
		return FacePolygon, nil
	case "triangles":
		return FaceTriangles, nil
	case "triangle_strip":
		return FaceTriangleStrip, nil
	case "quads":
		return FaceQuads, nil
	case "quad_strip":
		return FaceQuadStrip, nil
	}
	return FacePolygon, fmt.Errorf("unknown face type %q", s)
}
