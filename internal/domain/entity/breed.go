package entity

import (
	"errors"
	"time"
)

const (
	// BreedPrompt фиксированная инструкция для модели.
	BreedPrompt = `
    You are an agricultural AI specialist. I'm providing you with two crop images. 
    Based on the visual characteristics of these crops, please:
    
    1. Identify the crops in both images
    2. Analyze their key characteristics (size, color, shape, texture, etc.)
    3. Create a hypothetical new crop breed that combines the best features of both
    4. Provide the following details for your new breed:
       - Breed Name (creative and descriptive)
       - Physical Description
       - Growing Conditions
       - Nutritional Benefits
       - Harvest Time
       - Special Properties or Advantages
       - Growing Tips
    
    Please be creative but scientifically plausible in your descriptions.
    Format your response in a clear, organized manner.
    `

	// ErrorPrefix начало текста результата, если генерация не удалась.
	ErrorPrefix = "Error generating breed description: "

	// ResultFileName имя файла для скачивания результата.
	ResultFileName = "new_crop_breed.txt"

	// ResultMimeType тип содержимого файла результата.
	ResultMimeType = "text/plain"
)

// ErrMissingCrop возвращается, если не хватает одного из двух изображений.
var ErrMissingCrop = errors.New("both crop images are required")

// BreedRequest одноразовый запрос к модели: две культуры и инструкция.
type BreedRequest struct {
	Prompt string
	First  *CropImage
	Second *CropImage
}

// NewBreedRequest собирает запрос. Оба изображения обязательны.
func NewBreedRequest(first, second *CropImage) (*BreedRequest, error) {
	if first.Size() == 0 || second.Size() == 0 {
		return nil, ErrMissingCrop
	}

	return &BreedRequest{
		Prompt: BreedPrompt,
		First:  first,
		Second: second,
	}, nil
}

// Images возвращает изображения в порядке загрузки
func (r *BreedRequest) Images() []*CropImage {
	return []*CropImage{r.First, r.Second}
}

// BreedResult текст, который показывается пользователю и отдаётся файлом.
type BreedResult struct {
	ID        string
	Text      string
	Failed    bool // Text содержит сообщение об ошибке
	CreatedAt time.Time
}

// NewFailedResult оборачивает ошибку генерации в текст результата.
func NewFailedResult(err error) *BreedResult {
	return &BreedResult{
		Text:   ErrorPrefix + err.Error(),
		Failed: true,
	}
}

// Bytes возвращает содержимое файла для скачивания
func (r *BreedResult) Bytes() []byte {
	return []byte(r.Text)
}
