package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// DefaultModel модель, если в конфигурации не указана другая
const DefaultModel = "gemini-2.0-flash"

// ErrEmptyResponse модель ответила без текста (например, ответ заблокирован фильтрами)
var ErrEmptyResponse = errors.New("model returned an empty response")

// Options параметры клиента
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration // 0 — таймаут SDK по умолчанию

	// Для тестов: другой адрес API и HTTP-клиент
	BaseURL    string
	HTTPClient *http.Client
}

// Client отправляет запросы в Gemini через официальный SDK
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

// NewClient создаёт клиента Gemini API
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai:   gc,
		model:   opts.Model,
		timeout: opts.Timeout,
	}, nil
}

// Model возвращает имя модели
func (c *Client) Model() string {
	return c.model
}

// Generate отправляет инструкцию и оба изображения одним сообщением пользователя.
func (c *Client) Generate(ctx context.Context, req *entity.BreedRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, buildContents(req), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// buildContents собирает мультимодальный запрос: текст, затем изображения в порядке загрузки.
func buildContents(req *entity.BreedRequest) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images() {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}

	return []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
}

var _ port.BreedGenerator = (*Client)(nil)
