package port

import (
	"context"
	"errors"

	"crop-breed-bot/internal/domain/entity"
)

// ErrResultNotFound результат не найден или устарел
var ErrResultNotFound = errors.New("breed result not found")

// ResultStore хранит готовые результаты, пока их можно скачать
type ResultStore interface {
	Save(ctx context.Context, result *entity.BreedResult) error

	// Get возвращает ErrResultNotFound для неизвестного или устаревшего ID
	Get(ctx context.Context, id string) (*entity.BreedResult, error)
}
