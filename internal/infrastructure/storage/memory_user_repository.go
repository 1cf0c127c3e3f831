package storage

import (
	"context"
	"sync"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище сессий бота.
// Наружу отдаются копии, поэтому изменения видны только после Save.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return cloneUser(user), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Пока ждали блокировку, пользователя мог создать другой запрос
	if user, exists = r.users[userID]; !exists {
		user = entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	return cloneUser(user), nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = cloneUser(user)
	r.mu.Unlock()

	return nil
}

// Reset сбрасывает сессию пользователя
func (r *MemoryUserRepository) Reset(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.Reset()
	}

	return nil
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.FirstCrop != nil {
		c.FirstCrop = append([]byte(nil), u.FirstCrop...)
	}
	return &c
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
