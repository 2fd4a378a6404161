package scene

import (
	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// drawFace draws one face with its vertices translated by -eye. Overlay faces
// pass the origin as eye.
func (p *Pipeline) drawFace(ref FaceRef, eye math.Vec3) {
	mesh, face := p.lists.face(ref)
	if face == nil {
		return
	}
	mat := mesh.Material(ref.Face)
	st := p.state

	st.Set(CapCullFace, p.opts.BackfaceCulling && !face.TwoSided)

	day, dayOK := p.resolve(mat.DayTexture)
	night, nightOK := p.resolve(mat.NightTexture)

	if dayOK {
		st.Set(CapTexture2D, true)
		st.BindTexture(day)
		st.Set(CapAlphaTest, p.textures.Transparency(mat.DayTexture) != texture.TransparencyNone)
	} else {
		st.Set(CapTexture2D, false)
		st.Set(CapAlphaTest, false)
	}

	additive := mat.Blend == world.BlendAdditive
	blendWas, fogWas := st.Enabled(CapBlend), st.Enabled(CapFog)
	if additive {
		st.Set(CapBlend, true)
		st.BlendFunc(BlendAdditive)
		st.Set(CapFog, false)
	}

	lit := p.lighting && !nightOK
	st.Set(CapLighting, lit)

	glow := glowFactor(mesh, ref.Face, &mat, eye)
	shade := shadeFace(&mat, nightOK, p.lightingAmount, glow)

	st.Emission(mat.Emissive)
	p.fillPolygon(mesh, face, eye, dayOK, lit)
	p.poly.Color = shade.color(mat.Color, shade.alpha)
	p.backend.DrawPolygon(&p.poly)

	if nightOK {
		st.Set(CapTexture2D, true)
		st.Set(CapBlend, true)
		st.BindTexture(night)
		prevAlpha := st.CurrentAlphaFunc()
		st.AlphaFunc(alphaAny)
		p.fillPolygon(mesh, face, eye, true, false)
		p.poly.Color = shade.color(mat.Color, shade.nightAlpha)
		p.backend.DrawPolygon(&p.poly)
		st.AlphaFunc(prevAlpha)
		st.Set(CapBlend, blendWas || additive)
	}

	if additive {
		st.BlendFunc(BlendAlpha)
		st.Set(CapFog, fogWas)
		st.Set(CapBlend, blendWas)
	}
	p.faces++
}

func (p *Pipeline) resolve(id world.TextureID) (uint32, bool) {
	if id == world.NoTexture || p.textures == nil {
		return 0, false
	}
	h, ok := p.textures.Resolve(id)
	p.syncUploads()
	return h, ok
}

// fillPolygon loads the face's corners into the scratch polygon. Corners
// referencing missing vertices are skipped.
func (p *Pipeline) fillPolygon(mesh *world.Mesh, face *world.Face, eye math.Vec3, textured, normals bool) {
	p.poly.Type = face.Type
	p.poly.Textured = textured
	p.poly.Normals = normals
	p.poly.Vertices = p.poly.Vertices[:0]
	for _, fv := range face.Vertices {
		if fv.Index < 0 || fv.Index >= len(mesh.Vertices) {
			continue
		}
		v := &mesh.Vertices[fv.Index]
		p.poly.Vertices = append(p.poly.Vertices, PolygonVertex{
			Position: v.Position.Sub(eye),
			TexCoord: v.TexCoord,
			Normal:   fv.Normal,
		})
	}
}
