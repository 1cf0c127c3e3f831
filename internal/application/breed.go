package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
	"crop-breed-bot/internal/metrics"
)

// ErrBusy для пользователя уже идёт генерация
var ErrBusy = errors.New("breed generation already in progress")

var errEmptyText = errors.New("model returned an empty response")

// BreedService принимает две культуры и получает описание нового сорта.
type BreedService struct {
	users     *UserService
	decoder   port.ImageDecoder
	generator port.BreedGenerator
	results   port.ResultStore
	now       func() time.Time
}

// CropOutcome итог приёма очередного фото в боте.
// Result пуст, пока не пришло второе фото.
type CropOutcome struct {
	User   *entity.User
	Result *entity.BreedResult
}

// NewBreedService создаёт сервис генерации сортов.
func NewBreedService(users *UserService, decoder port.ImageDecoder, generator port.BreedGenerator, results port.ResultStore) *BreedService {
	return &BreedService{
		users:     users,
		decoder:   decoder,
		generator: generator,
		results:   results,
		now:       time.Now,
	}
}

// Generate декодирует оба фото и делает ровно один запрос к модели.
// Если одного из фото нет, возвращается entity.ErrMissingCrop и запрос не отправляется.
// Любая другая ошибка становится текстом результата с префиксом entity.ErrorPrefix.
func (s *BreedService) Generate(ctx context.Context, first, second []byte) (*entity.BreedResult, error) {
	if len(first) == 0 || len(second) == 0 {
		return nil, entity.ErrMissingCrop
	}

	start := time.Now()
	result := s.generate(ctx, first, second)
	result.ID = uuid.NewString()
	result.CreatedAt = s.now()

	label := metrics.ResultOK
	if result.Failed {
		label = metrics.ResultError
		log.WithField("result_id", result.ID).Warn(result.Text)
	}
	metrics.GenerationsTotal.WithLabelValues(label).Inc()
	metrics.GenerationDurationSeconds.WithLabelValues(label).Observe(time.Since(start).Seconds())

	// Без сохранения пропадёт только ссылка на скачивание, текст всё равно показываем
	if err := s.results.Save(ctx, result); err != nil {
		log.WithError(err).WithField("result_id", result.ID).Error("failed to store breed result")
	}

	return result, nil
}

func (s *BreedService) generate(ctx context.Context, first, second []byte) (result *entity.BreedResult) {
	defer func() {
		if r := recover(); r != nil {
			result = entity.NewFailedResult(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	firstCrop, err := s.decoder.Decode(first)
	if err != nil {
		return entity.NewFailedResult(fmt.Errorf("first crop: %w", err))
	}

	secondCrop, err := s.decoder.Decode(second)
	if err != nil {
		return entity.NewFailedResult(fmt.Errorf("second crop: %w", err))
	}

	req, err := entity.NewBreedRequest(firstCrop, secondCrop)
	if err != nil {
		return entity.NewFailedResult(err)
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return entity.NewFailedResult(err)
	}
	if strings.TrimSpace(text) == "" {
		return entity.NewFailedResult(errEmptyText)
	}

	return &entity.BreedResult{Text: text}
}

// AcceptCrop принимает фото из бота: первое откладывается, второе запускает генерацию.
func (s *BreedService) AcceptCrop(ctx context.Context, userID, chatID int64, photo []byte) (*CropOutcome, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	switch user.State {
	case entity.StateProcessing:
		return nil, ErrBusy
	case entity.StateAwaitingSecondCrop:
		return s.acceptSecondCrop(ctx, user, photo)
	default:
		user.HoldFirstCrop(photo)
		if err := s.users.Save(ctx, user); err != nil {
			return nil, err
		}
		return &CropOutcome{User: user}, nil
	}
}

func (s *BreedService) acceptSecondCrop(ctx context.Context, user *entity.User, photo []byte) (*CropOutcome, error) {
	first := user.TakeFirstCrop()
	if len(first) == 0 {
		user.SetState(entity.StateAwaitingFirstCrop)
		if err := s.users.Save(ctx, user); err != nil {
			return nil, err
		}
		return nil, entity.ErrMissingCrop
	}

	user.SetState(entity.StateProcessing)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	result, genErr := s.Generate(ctx, first, photo)

	user.Reset()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	if genErr != nil {
		return nil, genErr
	}

	return &CropOutcome{User: user, Result: result}, nil
}

// CancelBreed забывает присланное фото и возвращает пользователя в меню.
func (s *BreedService) CancelBreed(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.users.Cancel(ctx, userID, chatID)
}

// Result возвращает сохранённый результат для скачивания.
func (s *BreedService) Result(ctx context.Context, id string) (*entity.BreedResult, error) {
	return s.results.Get(ctx, id)
}
