package models

// Форматы потоков, которые умеет раздавать платформа.
const (
	FormatM3U  = "m3u"
	FormatM3U8 = "m3u8"
	FormatMKV  = "mkv"
	FormatMP4  = "mp4"
)

// Category — категория каналов (кино, спорт, новости и т.д.).
type Category struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Channel — канал каталога. CategoryName заполняется при выборке
// с JOIN к категориям и в базе не хранится.
type Channel struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	LogoURL      string `json:"logo_url,omitempty"`
	Format       string `json:"format"`
	Active       bool   `json:"active"`
	CategoryID   *int64 `json:"category_id,omitempty"`
	CategoryName string `json:"category,omitempty"`
	// Country ограничивает показ канала одной страной; пустое значение —
	// канал виден всем.
	Country string `json:"country,omitempty"`
}

// Ad — рекламный ресурс (баннер или логотип).
type Ad struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	ImageURL string `json:"image_url"`
}
