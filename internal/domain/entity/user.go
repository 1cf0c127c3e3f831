package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu           UserState = "main_menu"            // В главном меню
	StateAwaitingFirstCrop  UserState = "awaiting_first_crop"  // Ожидание фото первой культуры
	StateAwaitingSecondCrop UserState = "awaiting_second_crop" // Ожидание фото второй культуры
	StateProcessing         UserState = "processing"           // Генерация описания
)

// User представляет пользователя бота
type User struct {
	ID        int64     // Telegram User ID
	ChatID    int64     // Telegram Chat ID
	State     UserState // Текущее состояние пользователя
	FirstCrop []byte    // Фото первой культуры до прихода второго
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// IsBusy сообщает, что для пользователя уже идёт генерация
func (u *User) IsBusy() bool {
	return u.State == StateProcessing
}

// HoldFirstCrop запоминает первое фото и ждёт второе
func (u *User) HoldFirstCrop(photo []byte) {
	u.FirstCrop = photo
	u.State = StateAwaitingSecondCrop
}

// TakeFirstCrop отдаёт отложенное фото и забывает его
func (u *User) TakeFirstCrop() []byte {
	photo := u.FirstCrop
	u.FirstCrop = nil
	return photo
}

// Reset возвращает пользователя в главное меню
func (u *User) Reset() {
	u.FirstCrop = nil
	u.State = StateMainMenu
}
