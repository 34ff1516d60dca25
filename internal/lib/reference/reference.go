// Package reference генерирует ссылки заказов для платёжного шлюза.
//
// Ссылка — непрозрачная строка, по которой асинхронные уведомления шлюза
// сопоставляются с заказом. Уникальность практическая, не криптографическая:
// метка времени плюс случайный суффикс.
package reference

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New возвращает новую ссылку заказа вида "ord-<unixnano>-<suffix>".
func New() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("ord-%d-%s", time.Now().UnixNano(), suffix)
}
