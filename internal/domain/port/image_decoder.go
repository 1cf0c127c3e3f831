package port

import "crop-breed-bot/internal/domain/entity"

// ImageDecoder интерфейс приёма загруженных изображений
type ImageDecoder interface {
	// Decode проверяет формат, декодирует и нормализует изображение
	Decode(data []byte) (*entity.CropImage, error)
}
