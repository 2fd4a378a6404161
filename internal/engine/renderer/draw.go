package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/railview/internal/engine/scene"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// backgroundSegments is the number of wall quads of the background cylinder.
const backgroundSegments = 32

// DrawPolygon submits one polygon in immediate mode.
func (r *GL) DrawPolygon(p *scene.Polygon) {
	gl.Begin(primitive(p.Type))
	gl.Color4f(p.Color[0], p.Color[1], p.Color[2], p.Color[3])
	for i := range p.Vertices {
		v := &p.Vertices[i]
		if p.Normals {
			gl.Normal3f(v.Normal.X, v.Normal.Y, v.Normal.Z)
		}
		if p.Textured {
			gl.TexCoord2f(v.TexCoord.X, v.TexCoord.Y)
		}
		gl.Vertex3f(v.Position.X, v.Position.Y, v.Position.Z)
	}
	gl.End()
}

// DrawBackground wraps the bound texture around a cylinder centred on the eye.
func (r *GL) DrawBackground(handle uint32) {
	ring := backgroundRing(backgroundSegments, r.config.ViewingDistance)
	y0 := -0.125 * r.config.ViewingDistance
	y1 := 0.375 * r.config.ViewingDistance

	gl.Color4f(1, 1, 1, 1)
	step := float32(-1) / backgroundSegments
	u := float32(0.5) / backgroundSegments
	for i := range backgroundSegments {
		a, b := ring[i], ring[(i+1)%backgroundSegments]
		gl.Begin(gl.QUADS)
		gl.TexCoord2f(u, 0.005)
		gl.Vertex3f(a.X, y1, a.Y)
		gl.TexCoord2f(u, 0.995)
		gl.Vertex3f(a.X, y0, a.Y)
		gl.TexCoord2f(u+step, 0.995)
		gl.Vertex3f(b.X, y0, b.Y)
		gl.TexCoord2f(u+step, 0.005)
		gl.Vertex3f(b.X, y1, b.Y)
		gl.End()

		gl.Begin(gl.TRIANGLES)
		gl.TexCoord2f(u, 0.005)
		gl.Vertex3f(a.X, y1, a.Y)
		gl.TexCoord2f(u+step, 0.005)
		gl.Vertex3f(b.X, y1, b.Y)
		gl.TexCoord2f(u+0.5*step, 0.1)
		gl.Vertex3f(0, y1, 0)
		gl.End()
		u += step
	}
}

// Accumulate blends the previous frame over the current one and captures the
// result for the next frame.
func (r *GL) Accumulate(factor float32) {
	w, h := int32(r.config.Width), int32(r.config.Height)
	if r.blurTexture == 0 {
		gl.GenTextures(1, &r.blurTexture)
		gl.BindTexture(gl.TEXTURE_2D, r.blurTexture)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	}
	gl.BindTexture(gl.TEXTURE_2D, r.blurTexture)

	if r.blurValid && factor > 0 {
		proj := math.Ortho(0, float32(w), 0, float32(h), -1, 1)
		view := math.Identity()
		gl.MatrixMode(gl.PROJECTION)
		gl.PushMatrix()
		gl.LoadMatrixf(proj.Ptr())
		gl.MatrixMode(gl.MODELVIEW)
		gl.PushMatrix()
		gl.LoadMatrixf(view.Ptr())

		gl.Color4f(1, 1, 1, factor)
		gl.Begin(gl.QUADS)
		gl.TexCoord2f(0, 0)
		gl.Vertex2f(0, 0)
		gl.TexCoord2f(0, 1)
		gl.Vertex2f(0, float32(h))
		gl.TexCoord2f(1, 1)
		gl.Vertex2f(float32(w), float32(h))
		gl.TexCoord2f(1, 0)
		gl.Vertex2f(float32(w), 0)
		gl.End()

		gl.PopMatrix()
		gl.MatrixMode(gl.PROJECTION)
		gl.PopMatrix()
		gl.MatrixMode(gl.MODELVIEW)
	}

	gl.CopyTexImage2D(gl.TEXTURE_2D, 0, gl.RGB, 0, 0, w, h, 0)
	r.blurValid = true
}

// backgroundRing returns the XZ corners of an n-sided ring of radius d. The
// first corner sits so the texture seam is behind the default view.
func backgroundRing(n int, d float32) []math.Vec2 {
	ring := make([]math.Vec2, n)
	angle := 5*math32.Pi/6 - math32.Pi/float32(n)
	inc := 2 * math32.Pi / float32(n)
	for i := range ring {
		ring[i] = math.Vec2{X: d * math32.Cos(angle), Y: d * math32.Sin(angle)}
		angle += inc
	}
	return ring
}

func primitive(t world.FaceType) uint32 {
	switch t {
	case world.FaceTriangles:
		return gl.TRIANGLES
	case world.FaceTriangleStrip:
		return gl.TRIANGLE_STRIP
	case world.FaceQuads:
		return gl.QUADS
	case world.FaceQuadStrip:
		return gl.QUAD_STRIP
	}
	return gl.POLYGON
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *GL) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}
