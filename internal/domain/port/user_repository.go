package port

import (
	"context"

	"crop-breed-bot/internal/domain/entity"
)

// UserRepository интерфейс хранилища сессий пользователей бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя вместе с отложенным фото
	Save(ctx context.Context, user *entity.User) error

	// Reset возвращает пользователя в главное меню и забывает отложенное фото
	Reset(ctx context.Context, userID int64) error
}
