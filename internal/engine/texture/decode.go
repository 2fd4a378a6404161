// Package texture implements the texture cache: registration of texture
// files, lazy synchronous decoding on first use, and transparency detection.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration

	"github.com/Faultbox/railview/internal/engine/world"
)

// ErrUnsupportedFormat is returned for image data no registered decoder accepts.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode decodes image data into RGBA. When key is set, pixels matching the
// key color become fully transparent black.
func Decode(data []byte, key *world.ColorRGB) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		tga, tgaErr := decodeTGA(data)
		if tgaErr != nil {
			return nil, ErrUnsupportedFormat
		}
		img, err = tga, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	if key != nil {
		ApplyColorKey(rgba, *key)
	}
	return rgba, nil
}

// ApplyColorKey makes pixels equal to key transparent in place. RGB is also
// zeroed on those pixels so filtering does not bleed the key color.
func ApplyColorKey(img *image.RGBA, key world.ColorRGB) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i] == key.R && pix[i+1] == key.G && pix[i+2] == key.B {
			pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0
		}
	}
}

// Transparency classifies how a texture uses its alpha channel.
type Transparency uint8

const (
	// TransparencyNone means every pixel is fully opaque.
	TransparencyNone Transparency = iota
	// TransparencyAlpha means some pixels are partially transparent.
	TransparencyAlpha
	// TransparencyColorKey means pixels are either fully opaque or fully transparent.
	TransparencyColorKey
)

func (t Transparency) String() string {
	switch t {
	case TransparencyNone:
		return "none"
	case TransparencyAlpha:
		return "alpha"
	case TransparencyColorKey:
		return "colorkey"
	}
	return fmt.Sprintf("Transparency(%d)", uint8(t))
}

// DetectTransparency scans the alpha channel of img.
func DetectTransparency(img *image.RGBA) Transparency {
	result := TransparencyNone
	pix := img.Pix
	for i := 3; i < len(pix); i += 4 {
		switch a := pix[i]; {
		case a == 255:
		case a == 0:
			result = TransparencyColorKey
		default:
			return TransparencyAlpha
		}
	}
	return result
}
