package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"

	// DefaultMaxSide граница, до которой уменьшаются большие фото
	DefaultMaxSide = 1024
	// DefaultMaxPixels предел площади до декодирования, около 40 Мп
	DefaultMaxPixels = 40_000_000
)

var (
	ErrEmptyImage        = errors.New("empty image")
	ErrUnsupportedFormat = errors.New("unsupported image format, expected PNG or JPEG")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

// sniff определяет тип по содержимому, а не по имени файла.
func sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}

	m := mimetype.Detect(data)
	switch {
	case m.Is(mimePNG):
		return mimePNG, nil
	case m.Is(mimeJPEG):
		return mimeJPEG, nil
	default:
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedFormat, m.String())
	}
}

// checkPixels читает только заголовок и отсекает картинки, которые не влезут в память при декодировании.
// Сжатый файл может быть маленьким при огромных заявленных размерах.
func checkPixels(data []byte, mime string, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s header: %w", mime, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrEmptyImage
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d, limit %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// fitInto возвращает размеры, вписанные в квадрат maxSide, и признак того, что их пришлось менять.
func fitInto(w, h, maxSide int) (int, int, bool) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h, false
	}

	scale := float64(maxSide) / float64(maxInt(w, h))
	nw := maxInt(1, int(float64(w)*scale))
	nh := maxInt(1, int(float64(h)*scale))
	return nw, nh, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
