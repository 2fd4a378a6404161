package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// decodeTGA decodes uncompressed or RLE true-color TGA data with 24 or 32
// bits per pixel. TGA has no magic number, so it is tried after the
// registered decoders reject the data.
func decodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errors.New("tga: header too short")
	}
	idLength := int(data[0])
	colorMapType, imageType := data[1], data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topDown := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, errors.New("tga: color-mapped images are not supported")
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE:
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	case width == 0 || height == 0:
		return nil, errors.New("tga: empty image")
	}
	if 18+idLength > len(data) {
		return nil, errTGATruncated
	}

	w := tgaWriter{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		size:    bpp / 8,
		topDown: topDown,
	}
	src := data[18+idLength:]
	var err error
	if imageType == tgaTrueColor {
		err = w.raw(src, width*height)
	} else {
		err = w.rle(src)
	}
	if err != nil {
		return nil, err
	}
	return w.img, nil
}

// tgaWriter stores BGR(A) pixels in file order, flipping bottom-up images.
type tgaWriter struct {
	img     *image.RGBA
	size    int
	topDown bool
	n       int
}

func (w *tgaWriter) done() bool {
	b := w.img.Bounds()
	return w.n >= b.Dx()*b.Dy()
}

func (w *tgaWriter) put(px []byte) {
	b := w.img.Bounds()
	x, y := w.n%b.Dx(), w.n/b.Dx()
	if !w.topDown {
		y = b.Dy() - 1 - y
	}
	i := w.img.PixOffset(x, y)
	w.img.Pix[i], w.img.Pix[i+1], w.img.Pix[i+2], w.img.Pix[i+3] = px[2], px[1], px[0], 255
	if w.size == 4 {
		w.img.Pix[i+3] = px[3]
	}
	w.n++
}

func (w *tgaWriter) raw(src []byte, count int) error {
	if len(src) < count*w.size {
		return errTGATruncated
	}
	for i := 0; i < count; i++ {
		w.put(src[i*w.size:])
	}
	return nil
}

func (w *tgaWriter) rle(src []byte) error {
	for !w.done() {
		if len(src) == 0 {
			return errTGATruncated
		}
		header := src[0]
		src = src[1:]
		count := int(header&0x7f) + 1
		if header&0x80 != 0 {
			if len(src) < w.size {
				return errTGATruncated
			}
			for ; count > 0 && !w.done(); count-- {
				w.put(src)
			}
			src = src[w.size:]
			continue
		}
		if len(src) < count*w.size {
			return errTGATruncated
		}
		for ; count > 0 && !w.done(); count-- {
			w.put(src)
			src = src[w.size:]
		}
	}
	return nil
}
