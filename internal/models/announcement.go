package models

import "time"

// Announcement представляет объявление, рассылаемое группе пользователей.
// Audience — либо "all", либо имя тарифа, профили которого получат рассылку.
type Announcement struct {
	ID        int
	Title     string
	Body      string
	Audience  string
	CreatedAt time.Time
}

// UserAnnouncement — строка веера доставки: одна на пару (объявление, пользователь).
type UserAnnouncement struct {
	ID             int
	AnnouncementID int
	UserUID        string
	IsRead         bool
	CreatedAt      time.Time
}

// Coupon — промокод. Жизненный цикл ограничен созданием и массовым удалением.
type Coupon struct {
	ID         int
	Code       string
	PercentOff int
	ExpiresAt  *time.Time
}

// Trial — строка пробного периода, удаляется административной операцией.
type Trial struct {
	ID      int
	UserUID string
	Plan    string
	EndsAt  time.Time
}
