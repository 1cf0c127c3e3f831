package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	app "crop-breed-bot/internal/application"
	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
	"crop-breed-bot/internal/metrics"
)

const (
	msgUploadBoth = "Please upload both crop images to generate a new breed."
	msgTooLarge   = "Each image must be at most %d MiB. Please upload smaller crop images."
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler веб-страница генератора
type Handler struct {
	breeds         *app.BreedService
	maxUploadBytes int64
}

// NewHandler создаёт обработчики страницы
func NewHandler(breeds *app.BreedService, maxUploadBytes int64) *Handler {
	return &Handler{
		breeds:         breeds,
		maxUploadBytes: maxUploadBytes,
	}
}

// NewRouter собирает gin-роутер со страницей, скачиванием и служебными ручками
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	// Два файла плюс запас на поля формы
	router.MaxMultipartMemory = h.maxRequestBytes()

	router.GET("/", h.Index)
	router.POST("/breeds", h.CreateBreed)
	router.GET("/breeds/:id/download", h.DownloadBreed)
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

type pageData struct {
	Info     string
	Result   *entity.BreedResult
	FileName string
}

// Index отдаёт пустую форму
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{FileName: entity.ResultFileName})
}

// CreateBreed принимает оба фото и показывает результат генерации.
// Пока не загружены оба фото, модель не вызывается.
func (h *Handler) CreateBreed(c *gin.Context) {
	// Тело ограничиваем до разбора формы, иначе gin сложит всё лишнее во временные файлы
	if c.Request.ContentLength > h.maxRequestBytes() {
		h.renderInfo(c, errTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes())

	first, err := h.readUpload(c, "crop1")
	if err != nil {
		h.renderInfo(c, err)
		return
	}
	second, err := h.readUpload(c, "crop2")
	if err != nil {
		h.renderInfo(c, err)
		return
	}

	result, err := h.breeds.Generate(c.Request.Context(), first, second)
	if err != nil {
		h.renderInfo(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Result:   result,
		FileName: entity.ResultFileName,
	})
}

// DownloadBreed отдаёт текст результата файлом, байт в байт как на странице
func (h *Handler) DownloadBreed(c *gin.Context) {
	result, err := h.breeds.Result(c.Request.Context(), c.Param("id"))
	if errors.Is(err, port.ErrResultNotFound) {
		c.String(http.StatusNotFound, "breed description not found or expired")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to load breed result")
		c.String(http.StatusInternalServerError, "failed to load breed description")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, entity.ResultFileName))
	c.Data(http.StatusOK, entity.ResultMimeType+"; charset=utf-8", result.Bytes())
}

// HealthCheck ручка для проверки живости
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "crop-breed-bot",
	})
}

var errTooLarge = errors.New("upload too large")

// maxRequestBytes два файла плюс запас на поля формы
func (h *Handler) maxRequestBytes() int64 {
	return 2*h.maxUploadBytes + 1<<20
}

func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return nil, errTooLarge
	}
	if err != nil {
		// Нет поля, пустой выбор файла или не multipart — для пользователя одно и то же
		return nil, entity.ErrMissingCrop
	}
	if fh.Size == 0 {
		return nil, entity.ErrMissingCrop
	}
	if fh.Size > h.maxUploadBytes {
		return nil, errTooLarge
	}

	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// renderInfo показывает подсказку вместо результата. Это не ошибка генерации.
func (h *Handler) renderInfo(c *gin.Context, err error) {
	var info string
	switch {
	case errors.Is(err, entity.ErrMissingCrop):
		metrics.UploadsRejectedTotal.WithLabelValues("missing_crop").Inc()
		info = msgUploadBoth
	case errors.Is(err, errTooLarge):
		metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
		info = fmt.Sprintf(msgTooLarge, h.maxUploadBytes>>20)
	default:
		log.WithError(err).Warn("failed to read upload")
		metrics.UploadsRejectedTotal.WithLabelValues("unreadable").Inc()
		info = msgUploadBoth
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Info:     info,
		FileName: entity.ResultFileName,
	})
}
