package entity

// CropImage декодированное и нормализованное изображение культуры
type CropImage struct {
	Data     []byte // байты изображения, готовые к отправке в модель
	MimeType string // image/png или image/jpeg
	Width    int    // ширина в пикселях
	Height   int    // высота в пикселях
}

// Size возвращает размер изображения в байтах
func (c *CropImage) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}
