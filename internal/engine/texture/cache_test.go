package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/railview/internal/engine/world"
)

func encodePNG(t *testing.T, pixels []color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, len(pixels), 1))
	for x, p := range pixels {
		img.SetRGBA(x, 0, p)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type fakeUploader struct {
	next    uint32
	deleted []uint32
}

func (f *fakeUploader) Upload(img *image.RGBA) (uint32, error) {
	f.next++
	return f.next, nil
}

func (f *fakeUploader) Delete(h uint32) {
	f.deleted = append(f.deleted, h)
}

var (
	opaqueRed  = color.RGBA{R: 255, A: 255}
	opaqueBlue = color.RGBA{B: 255, A: 255}
	halfGreen  = color.RGBA{G: 128, A: 128}
)

func TestDetectTransparency(t *testing.T) {
	tests := []struct {
		name   string
		pixels []color.RGBA
		key    *world.ColorRGB
		want   Transparency
	}{
		{"opaque", []color.RGBA{opaqueRed, opaqueBlue}, nil, TransparencyNone},
		{"alpha channel", []color.RGBA{opaqueRed, halfGreen}, nil, TransparencyAlpha},
		{"color key", []color.RGBA{opaqueRed, opaqueBlue}, &world.ColorRGB{B: 255}, TransparencyColorKey},
		{"key not present", []color.RGBA{opaqueRed}, &world.ColorRGB{G: 255}, TransparencyNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(encodePNG(t, tt.pixels), tt.key)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := DetectTransparency(img); got != tt.want {
				t.Errorf("DetectTransparency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeBMPColorKey(t *testing.T) {
	// BMP has no alpha, so keyed textures are the usual case.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, opaqueRed)
	img.SetRGBA(1, 0, opaqueBlue)
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(buf.Bytes(), &world.ColorRGB{B: 255})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a := got.RGBAAt(1, 0).A; a != 0 {
		t.Errorf("keyed pixel alpha = %d, want 0", a)
	}
	if c := got.RGBAAt(0, 0); c != opaqueRed {
		t.Errorf("unkeyed pixel = %v, want %v", c, opaqueRed)
	}
	if tr := DetectTransparency(got); tr != TransparencyColorKey {
		t.Errorf("DetectTransparency = %v, want color key", tr)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode([]byte("not an image"), nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCacheLazyLoad(t *testing.T) {
	files := map[string][]byte{
		"keyed.png": encodePNG(t, []color.RGBA{opaqueRed, opaqueBlue}),
		"alpha.png": encodePNG(t, []color.RGBA{halfGreen}),
	}
	reads := 0
	load := func(path string) ([]byte, error) {
		reads++
		data, ok := files[path]
		if !ok {
			return nil, errors.New("missing")
		}
		return data, nil
	}
	up := &fakeUploader{}
	c := NewCache(up, load, nil)

	keyed := c.Register("keyed.png", &world.ColorRGB{B: 255})
	alpha := c.Register("alpha.png", nil)
	missing := c.Register("missing.png", nil)
	if again := c.Register("keyed.png", &world.ColorRGB{B: 255}); again != keyed {
		t.Errorf("re-registering returned %d, want %d", again, keyed)
	}
	if plain := c.Register("keyed.png", nil); plain == keyed {
		t.Errorf("different color key should get its own id")
	}
	if reads != 0 {
		t.Fatalf("registration should not read files, got %d reads", reads)
	}

	if got := c.Transparency(keyed); got != TransparencyColorKey {
		t.Errorf("keyed transparency = %v", got)
	}
	if got := c.Transparency(alpha); got != TransparencyAlpha {
		t.Errorf("alpha transparency = %v", got)
	}
	h, ready := c.Resolve(keyed)
	if !ready || h == 0 {
		t.Errorf("Resolve(keyed) = %d, %v; want ready", h, ready)
	}
	readsBefore := reads
	c.Resolve(keyed)
	if reads != readsBefore {
		t.Errorf("second resolve read the file again")
	}

	if _, ready := c.Resolve(missing); ready {
		t.Errorf("missing texture reported ready")
	}
	if got := c.Transparency(missing); got != TransparencyNone {
		t.Errorf("missing transparency = %v, want none", got)
	}
	if _, ready := c.Resolve(world.NoTexture); ready {
		t.Errorf("NoTexture reported ready")
	}

	registered, loaded := c.Stats()
	if registered != 4 || loaded != 2 {
		t.Errorf("Stats = %d, %d; want 4, 2", registered, loaded)
	}

	c.UnloadAll()
	if len(up.deleted) != 2 {
		t.Errorf("deleted %d handles, want 2", len(up.deleted))
	}
	if _, loaded := c.Stats(); loaded != 0 {
		t.Errorf("loaded after UnloadAll = %d", loaded)
	}
}

func TestCacheHeadlessThenUpload(t *testing.T) {
	data := encodePNG(t, []color.RGBA{opaqueRed})
	c := NewCache(nil, func(string) ([]byte, error) { return data, nil }, nil)
	id := c.Register("a.png", nil)

	if got := c.Transparency(id); got != TransparencyNone {
		t.Errorf("transparency = %v", got)
	}
	if _, ready := c.Resolve(id); ready {
		t.Errorf("headless cache should never be ready")
	}
	if n := c.Uploads(); n != 0 {
		t.Errorf("headless uploads = %d, want 0", n)
	}

	c.SetUploader(&fakeUploader{})
	if _, ready := c.Resolve(id); !ready {
		t.Errorf("texture should upload once an uploader is attached")
	}
	c.Resolve(id)
	if n := c.Uploads(); n != 1 {
		t.Errorf("uploads = %d, want 1", n)
	}
}
