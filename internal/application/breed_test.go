package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
	"crop-breed-bot/internal/infrastructure/storage"
	"crop-breed-bot/internal/infrastructure/vision"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	requests []*entity.BreedRequest
	text     string
	err      error
	panicMsg string
}

func (g *fakeGenerator) Generate(ctx context.Context, req *entity.BreedRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	return g.text, g.err
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func cropPNG(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// hugePNGHeader PNG размером 30000x30000, от которого есть только заголовок
func hugePNGHeader() []byte {
	chunk := []byte("IHDR")
	chunk = binary.BigEndian.AppendUint32(chunk, 30000)
	chunk = binary.BigEndian.AppendUint32(chunk, 30000)
	chunk = append(chunk, 8, 0, 0, 0, 0)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, chunk...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(chunk))
}

func newBreedService(gen port.BreedGenerator) (*BreedService, *storage.MemoryResultStore) {
	results := storage.NewMemoryResultStore(time.Hour)
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewBreedService(users, vision.NewImageDecoder(vision.DefaultMaxSide), gen, results), results
}

func TestBreedService_Generate(t *testing.T) {
	gen := &fakeGenerator{text: "Breed Name: Emerald Wheat"}
	svc, results := newBreedService(gen)
	ctx := context.Background()

	green := cropPNG(t, color.RGBA{G: 200, A: 255})
	yellow := cropPNG(t, color.RGBA{R: 220, G: 200, A: 255})

	res, err := svc.Generate(ctx, green, yellow)
	require.NoError(t, err)
	require.False(t, res.Failed)
	require.Equal(t, "Breed Name: Emerald Wheat", res.Text)
	require.NotEmpty(t, res.ID)

	require.Equal(t, 1, gen.Calls())
	req := gen.requests[0]
	require.Equal(t, entity.BreedPrompt, req.Prompt)
	require.Equal(t, "image/png", req.First.MimeType)
	require.Equal(t, 8, req.First.Width)
	require.Equal(t, "image/png", req.Second.MimeType)
	require.NotEmpty(t, req.Second.Data)

	stored, err := results.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, res.Bytes(), stored.Bytes())
}

func TestBreedService_GenerateMissingCrop(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	svc, _ := newBreedService(gen)
	crop := cropPNG(t, color.White)

	_, err := svc.Generate(context.Background(), crop, nil)
	require.ErrorIs(t, err, entity.ErrMissingCrop)

	_, err = svc.Generate(context.Background(), nil, crop)
	require.ErrorIs(t, err, entity.ErrMissingCrop)

	require.Equal(t, 0, gen.Calls())
}

func TestBreedService_GenerateFailuresBecomeText(t *testing.T) {
	crop := cropPNG(t, color.White)

	tests := []struct {
		name      string
		gen       *fakeGenerator
		second    []byte
		wantCalls int
		contains  string
	}{
		{
			name:      "model error",
			gen:       &fakeGenerator{err: errors.New("quota exceeded")},
			second:    crop,
			wantCalls: 1,
			contains:  "quota exceeded",
		},
		{
			name:      "empty model text",
			gen:       &fakeGenerator{text: "  \n"},
			second:    crop,
			wantCalls: 1,
			contains:  "empty response",
		},
		{
			name:      "corrupt image",
			gen:       &fakeGenerator{text: "never"},
			second:    []byte("\x89PNG\r\n\x1a\ngarbage"),
			wantCalls: 0,
			contains:  "second crop",
		},
		{
			name:      "unsupported image",
			gen:       &fakeGenerator{text: "never"},
			second:    []byte("just some text, not an image"),
			wantCalls: 0,
			contains:  "unsupported image format",
		},
		{
			name:      "oversized dimensions",
			gen:       &fakeGenerator{text: "never"},
			second:    hugePNGHeader(),
			wantCalls: 0,
			contains:  "image dimensions too large",
		},
		{
			name:      "generator panic",
			gen:       &fakeGenerator{panicMsg: "boom"},
			second:    crop,
			wantCalls: 1,
			contains:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newBreedService(tt.gen)

			res, err := svc.Generate(context.Background(), crop, tt.second)
			require.NoError(t, err)
			require.True(t, res.Failed)
			require.True(t, strings.HasPrefix(res.Text, entity.ErrorPrefix), res.Text)
			require.Contains(t, res.Text, tt.contains)
			require.Equal(t, tt.wantCalls, tt.gen.Calls())
		})
	}
}

func TestBreedService_GenerateDoesNotCache(t *testing.T) {
	gen := &fakeGenerator{text: "Breed Name: Twin Barley"}
	svc, _ := newBreedService(gen)
	crop := cropPNG(t, color.Black)

	first, err := svc.Generate(context.Background(), crop, crop)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), crop, crop)
	require.NoError(t, err)

	require.Equal(t, 2, gen.Calls())
	require.NotEqual(t, first.ID, second.ID)
}

func TestBreedService_AcceptCropFlow(t *testing.T) {
	gen := &fakeGenerator{text: "Breed Name: Sunset Sorghum"}
	svc, _ := newBreedService(gen)
	ctx := context.Background()

	out, err := svc.AcceptCrop(ctx, 1, 10, cropPNG(t, color.White))
	require.NoError(t, err)
	require.Nil(t, out.Result)
	require.Equal(t, entity.StateAwaitingSecondCrop, out.User.State)
	require.Equal(t, 0, gen.Calls())

	out, err = svc.AcceptCrop(ctx, 1, 10, cropPNG(t, color.Black))
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	require.Equal(t, "Breed Name: Sunset Sorghum", out.Result.Text)
	require.Equal(t, entity.StateMainMenu, out.User.State)
	require.Nil(t, out.User.FirstCrop)
	require.Equal(t, 1, gen.Calls())
}

func TestBreedService_AcceptCropWhileBusy(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	svc, _ := newBreedService(gen)
	ctx := context.Background()

	_, err := svc.users.SetState(ctx, 1, 10, entity.StateProcessing)
	require.NoError(t, err)

	_, err = svc.AcceptCrop(ctx, 1, 10, cropPNG(t, color.White))
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, 0, gen.Calls())
}

func TestBreedService_SecondCropWithoutFirst(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	svc, _ := newBreedService(gen)
	ctx := context.Background()

	_, err := svc.users.SetState(ctx, 1, 10, entity.StateAwaitingSecondCrop)
	require.NoError(t, err)

	_, err = svc.AcceptCrop(ctx, 1, 10, cropPNG(t, color.White))
	require.ErrorIs(t, err, entity.ErrMissingCrop)
	require.Equal(t, 0, gen.Calls())

	user, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFirstCrop, user.State)
}

func TestBreedService_CancelBreed(t *testing.T) {
	svc, _ := newBreedService(&fakeGenerator{text: "x"})
	ctx := context.Background()

	_, err := svc.AcceptCrop(ctx, 1, 10, cropPNG(t, color.White))
	require.NoError(t, err)

	user, err := svc.CancelBreed(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Nil(t, user.FirstCrop)
}

func TestBreedService_ResultNotFound(t *testing.T) {
	svc, _ := newBreedService(&fakeGenerator{})
	_, err := svc.Result(context.Background(), "nope")
	require.ErrorIs(t, err, port.ErrResultNotFound)
}
