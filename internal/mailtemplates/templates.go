// Package mailtemplates собирает локализованные HTML-письма.
// Шаблоны встроены в бинарник; интерполируемые поля экранируются
// html/template автоматически.
package mailtemplates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind — тип письма.
type Kind string

const (
	// KindSignup — подтверждение регистрации.
	KindSignup Kind = "signup"
	// KindRecovery — восстановление пароля.
	KindRecovery Kind = "recovery"
	// KindContact — сообщение с формы обратной связи.
	KindContact Kind = "contact"
	// KindExpired — уведомление о понижении истёкшей подписки.
	KindExpired Kind = "expired"
	// KindAnnouncement — рассылка объявления.
	KindAnnouncement Kind = "announcement"
)

// Поддерживаемые локали. Неизвестная локаль заменяется на en.
const (
	LocaleEN = "en"
	LocaleRU = "ru"
)

var subjects = map[Kind]map[string]string{
	KindSignup: {
		LocaleEN: "Confirm your ClipLens account",
		LocaleRU: "Подтвердите аккаунт ClipLens",
	},
	KindRecovery: {
		LocaleEN: "Reset your ClipLens password",
		LocaleRU: "Сброс пароля ClipLens",
	},
	KindContact: {
		LocaleEN: "New contact form message",
		LocaleRU: "Новое сообщение с формы обратной связи",
	},
	KindExpired: {
		LocaleEN: "Your ClipLens subscription has expired",
		LocaleRU: "Подписка ClipLens закончилась",
	},
	KindAnnouncement: {
		LocaleEN: "ClipLens announcement",
		LocaleRU: "Объявление ClipLens",
	},
}

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ActionLinkData — данные писем регистрации и восстановления пароля.
type ActionLinkData struct {
	ActionLink string
}

// ContactData — данные письма формы обратной связи.
type ContactData struct {
	Name    string
	Email   string
	Message string
}

// ExpiredData — данные уведомления об истёкшей подписке.
type ExpiredData struct {
	Plan string
}

// AnnouncementData — данные письма-объявления.
type AnnouncementData struct {
	Title string
	Body  string
}

// NormalizeLocale приводит локаль к поддерживаемой.
func NormalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(locale), LocaleRU) {
		return LocaleRU
	}
	return LocaleEN
}

// Render собирает тему и HTML-тело письма указанного типа и локали.
func Render(kind Kind, locale string, data any) (subject, html string, err error) {
	const op = "mailtemplates.Render"

	locale = NormalizeLocale(locale)
	subjectByLocale, ok := subjects[kind]
	if !ok {
		return "", "", fmt.Errorf("%s: unknown email kind %q", op, kind)
	}

	var sb strings.Builder
	name := fmt.Sprintf("%s_%s.html", kind, locale)
	if err := tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return subjectByLocale[locale], sb.String(), nil
}
