package models

// AnnouncementEmail — сообщение очереди рассылки объявлений,
// одно на каждого получателя.
type AnnouncementEmail struct {
	Email  string `json:"email"`
	Locale string `json:"locale"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// ExpiredEmail — сообщение очереди уведомлений о понижении
// истёкшей подписки до бесплатного тарифа.
type ExpiredEmail struct {
	Email  string `json:"email"`
	Locale string `json:"locale"`
	Plan   string `json:"plan"`
}
