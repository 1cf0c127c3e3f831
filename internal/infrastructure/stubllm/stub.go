package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// Client детерминированный генератор без сети для локального запуска и CI.
// Одинаковые изображения дают одинаковый текст.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Generate(ctx context.Context, req *entity.BreedRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h := sha256.New()
	for _, img := range req.Images() {
		h.Write(img.Data)
	}
	short := hex.EncodeToString(h.Sum(nil)[:4])

	var b strings.Builder
	fmt.Fprintf(&b, "Breed Name: Stub Hybrid %s\n\n", strings.ToUpper(short))
	fmt.Fprintf(&b, "Physical Description: combines crop one (%dx%d %s) with crop two (%dx%d %s).\n",
		req.First.Width, req.First.Height, req.First.MimeType,
		req.Second.Width, req.Second.Height, req.Second.MimeType)
	b.WriteString("Growing Conditions: temperate climate, well-drained soil.\n")
	b.WriteString("Nutritional Benefits: not analysed (offline stub).\n")
	b.WriteString("Harvest Time: 90-110 days.\n")
	b.WriteString("Special Properties or Advantages: none, this text was generated without a model.\n")
	b.WriteString("Growing Tips: set GEMINI_API_KEY to get a real description.\n")
	return b.String(), nil
}

var _ port.BreedGenerator = (*Client)(nil)
