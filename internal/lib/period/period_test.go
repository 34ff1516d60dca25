package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	base := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		billing Billing
		want    time.Time
	}{
		{
			name:    "месячный период добавляет ровно один месяц",
			billing: Monthly,
			want:    time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "годовой период добавляет ровно один год",
			billing: Yearly,
			want:    time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "неизвестный период трактуется как годовой",
			billing: Billing("lifetime"),
			want:    time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(base, tt.billing))
		})
	}
}

func TestNextEnd(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("продление от будущей даты окончания", func(t *testing.T) {
		currentEnd := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
		got := NextEnd(currentEnd, paidAt, Monthly)
		assert.Equal(t, time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("просроченная подписка отсчитывается от оплаты", func(t *testing.T) {
		currentEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		got := NextEnd(currentEnd, paidAt, Monthly)
		assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestBillingValid(t *testing.T) {
	assert.True(t, Monthly.Valid())
	assert.True(t, Yearly.Valid())
	assert.False(t, Billing("weekly").Valid())
	assert.False(t, Billing("").Valid())
}
