package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration // 0 — без собственного таймаута
	GeminiStub    bool          // офлайн-генератор вместо Gemini

	TelegramToken string // бот запускается, только если задан

	HTTPAddr       string
	MaxUploadBytes int64
	MaxImageSide   int
	MaxImagePixels int // предел ширина*высота до декодирования
	ResultTTL      time.Duration

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout: p.getDuration("GEMINI_TIMEOUT", 0),
		GeminiStub:    p.getBool("GEMINI_STUB", false),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		MaxUploadBytes: int64(p.getInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxImageSide:   p.getInt("MAX_IMAGE_SIDE", 1024),
		MaxImagePixels: p.getInt("MAX_IMAGE_PIXELS", 40_000_000),
		ResultTTL:      p.getDuration("RESULT_TTL", time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и границы значений
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && !c.GeminiStub {
		return errors.New("GEMINI_API_KEY is required (or set GEMINI_STUB=true)")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.MaxImageSide <= 0 {
		return errors.New("MAX_IMAGE_SIDE must be positive")
	}
	if c.MaxImagePixels <= 0 {
		return errors.New("MAX_IMAGE_PIXELS must be positive")
	}
	if c.GeminiTimeout < 0 {
		return errors.New("GEMINI_TIMEOUT must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parser копит ошибки разбора, чтобы сообщить обо всех переменных сразу
type parser struct {
	errs []error
}

func (p *parser) getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
