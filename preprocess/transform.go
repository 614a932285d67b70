// Package preprocess turns user images into the normalized tensor the
// classifier was trained on.
package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	ImageSize = 224
	Channels  = 3
)

// Tensor is a single-image batch in NHWC layout: (1, ImageSize, ImageSize, Channels).
type Tensor struct {
	Shape [4]int64
	Data  []float32
}

// At returns the value of channel c at pixel (x, y).
func (t *Tensor) At(x, y, c int) float32 {
	w := int(t.Shape[2])
	ch := int(t.Shape[3])
	return t.Data[(y*w+x)*ch+c]
}

// Transform crops img to a centered square, resizes it to ImageSize and
// scales every RGB intensity into [0, 1]. img is not modified.
func Transform(img image.Image) (*Tensor, error) {
	if img == nil {
		return nil, &UnsupportedImageError{Reason: "no image"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &UnsupportedImageError{Reason: "zero-size image"}
	}

	box := FitBox(b, ImageSize, ImageSize)
	fitted := imaging.Resize(imaging.Crop(img, box), ImageSize, ImageSize, imaging.CatmullRom)

	t := &Tensor{
		Shape: [4]int64{1, ImageSize, ImageSize, Channels},
		Data:  make([]float32, ImageSize*ImageSize*Channels),
	}
	i := 0
	for y := range ImageSize {
		row := fitted.Pix[y*fitted.Stride : y*fitted.Stride+ImageSize*4]
		for x := range ImageSize {
			px := row[x*4 : x*4+4]
			// alpha (px[3]) is dropped
			t.Data[i] = float32(px[0]) / 255
			t.Data[i+1] = float32(px[1]) / 255
			t.Data[i+2] = float32(px[2]) / 255
			i += Channels
		}
	}
	return t, nil
}

// FitBox returns the largest rectangle inside b with the aspect ratio
// w:h, centered on b. The crop size is rounded to the nearest pixel and
// the offset is floored, so odd leftovers go to the right and bottom edges.
func FitBox(b image.Rectangle, w, h int) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()
	cw, ch := bw, bh
	// compare bw/bh against w/h without floating point
	switch {
	case bw*h > bh*w:
		cw = (bh*w*2 + h) / (2 * h)
	case bw*h < bh*w:
		ch = (bw*h*2 + w) / (2 * w)
	}
	cw = max(1, min(cw, bw))
	ch = max(1, min(ch, bh))
	x0 := b.Min.X + (bw-cw)/2
	y0 := b.Min.Y + (bh-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
