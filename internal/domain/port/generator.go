package port

import (
	"context"

	"crop-breed-bot/internal/domain/entity"
)

// BreedGenerator интерфейс мультимодальной модели
type BreedGenerator interface {
	// Generate отправляет запрос в модель и возвращает её текст
	Generate(ctx context.Context, req *entity.BreedRequest) (string, error)
}
