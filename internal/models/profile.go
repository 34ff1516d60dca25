// Package models содержит доменные структуры приложения: профили пользователей,
// подписки, заказы платёжного шлюза, объявления и купоны.
package models

import "time"

// Роли пользователей в таблице profiles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PlanFree — бесплатный тариф, на который понижаются истёкшие подписки.
const PlanFree = "free"

// Profile представляет профиль пользователя: одна строка на пользователя.
// Поля plan и subscription_status зеркалируют состояние актуальной подписки
// и являются производным представлением, а не вторым источником истины.
type Profile struct {
	UserUID            string    // Идентификатор пользователя у провайдера аутентификации
	Email              string    // Электронная почта
	Role               string    // Роль пользователя, admin или user
	Plan               string    // Текущий тариф
	SubscriptionStatus string    // Зеркало статуса актуальной подписки
	Locale             string    // Предпочитаемый язык писем, en или ru
	UpdatedAt          time.Time // Время последнего обновления строки
}
