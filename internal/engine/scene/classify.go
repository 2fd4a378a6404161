package scene

import (
	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/world"
)

// TransparencySource reports how a texture uses transparency. The texture
// cache implements it; the query may decode the texture on first use.
type TransparencySource interface {
	Transparency(id world.TextureID) texture.Transparency
}

// Classify picks the bucket for a face with material mat. It is deterministic
// for identical material and texture metadata.
func Classify(overlay bool, mat *world.Material, textures TransparencySource) Bucket {
	if overlay {
		return BucketOverlay
	}
	if !mat.Color.Opaque() || mat.Blend == world.BlendAdditive || mat.Glow.Enabled() {
		return BucketAlpha
	}
	colorKey := false
	for _, id := range mat.Textures() {
		if id == world.NoTexture || textures == nil {
			continue
		}
		switch textures.Transparency(id) {
		case texture.TransparencyAlpha:
			return BucketAlpha
		case texture.TransparencyColorKey:
			colorKey = true
		}
	}
	if colorKey {
		return BucketTransparentColor
	}
	return BucketOpaque
}
