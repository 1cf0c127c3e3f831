//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// ImageDecoder декодирует загрузки через OpenCV.
type ImageDecoder struct {
	MaxSide   int
	MaxPixels int
}

// NewImageDecoder создаёт декодер, уменьшающий фото до maxSide по большей стороне.
func NewImageDecoder(maxSide int) *ImageDecoder {
	return &ImageDecoder{MaxSide: maxSide, MaxPixels: DefaultMaxPixels}
}

// Decode проверяет формат и перекодирует изображение.
// OpenCV сам применяет EXIF-ориентацию при чтении.
func (d *ImageDecoder) Decode(data []byte) (*entity.CropImage, error) {
	mime, err := sniff(data)
	if err != nil {
		return nil, err
	}
	if err := checkPixels(data, mime, d.MaxPixels); err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mime, err)
	}
	defer func() { mat.Close() }()

	if mat.Empty() {
		return nil, fmt.Errorf("decode %s: %w", mime, ErrEmptyImage)
	}

	if w, h, ok := fitInto(mat.Cols(), mat.Rows(), d.MaxSide); ok {
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	ext := gocv.JPEGFileExt
	if mime == mimePNG {
		ext = gocv.PNGFileExt
	}

	buf, err := gocv.IMEncode(ext, mat)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", mime, err)
	}
	defer buf.Close()

	return &entity.CropImage{
		Data:     append([]byte(nil), buf.GetBytes()...),
		MimeType: mime,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
	}, nil
}

var _ port.ImageDecoder = (*ImageDecoder)(nil)
