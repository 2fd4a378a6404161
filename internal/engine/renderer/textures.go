package renderer

import (
	"errors"
	"image"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/railview/internal/engine/texture"
)

var _ texture.Uploader = (*GL)(nil)

// Upload creates a mipmapped, repeating texture from img.
func (r *GL) Upload(img *image.RGBA) (uint32, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, errors.New("empty image")
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.GENERATE_MIPMAP, gl.TRUE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return 0, glError(errCode)
	}
	return id, nil
}

// Delete releases a texture created by Upload.
func (r *GL) Delete(handle uint32) {
	gl.DeleteTextures(1, &handle)
}

type glError uint32

func (e glError) Error() string {
	switch uint32(e) {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return "GL error"
}
