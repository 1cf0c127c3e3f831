//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// ImageDecoder декодирует загрузки на чистом Go (сборка без OpenCV).
type ImageDecoder struct {
	MaxSide     int
	MaxPixels   int
	JPEGQuality int
}

// NewImageDecoder создаёт декодер, уменьшающий фото до maxSide по большей стороне.
func NewImageDecoder(maxSide int) *ImageDecoder {
	return &ImageDecoder{
		MaxSide:     maxSide,
		MaxPixels:   DefaultMaxPixels,
		JPEGQuality: 90,
	}
}

// Decode проверяет формат, поворачивает фото по EXIF и при необходимости уменьшает.
// Если пиксели не менялись, исходные байты отдаются без перекодирования.
func (d *ImageDecoder) Decode(data []byte) (*entity.CropImage, error) {
	mime, err := sniff(data)
	if err != nil {
		return nil, err
	}
	if err := checkPixels(data, mime, d.MaxPixels); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mime, err)
	}

	changed := false
	if mime == mimeJPEG {
		if o := exifOrientation(data); o > 1 && o <= 8 {
			img = orient(img, o)
			changed = true
		}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}

	if w, h, ok := fitInto(b.Dx(), b.Dy(), d.MaxSide); ok {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
		changed = true
	}

	out := data
	if changed {
		if out, err = d.encode(img, mime); err != nil {
			return nil, err
		}
	}

	return &entity.CropImage{
		Data:     out,
		MimeType: mime,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}

func (d *ImageDecoder) encode(img image.Image, mime string) ([]byte, error) {
	var buf bytes.Buffer
	switch mime {
	case mimePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: d.JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// exifOrientation возвращает EXIF-ориентацию, 1 если её нет.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// orient приводит изображение к нормальной ориентации (значения 2..8 по EXIF).
func orient(img image.Image, o int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2: // зеркально по горизонтали
				dx, dy = w-1-x, y
			case 3: // 180°
				dx, dy = w-1-x, h-1-y
			case 4: // зеркально по вертикали
				dx, dy = x, h-1-y
			case 5: // транспонирование
				dx, dy = y, x
			case 6: // 90° по часовой
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8: // 90° против часовой
				dx, dy = y, w-1-x
			default:
				dx, dy = x, y
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

var _ port.ImageDecoder = (*ImageDecoder)(nil)
