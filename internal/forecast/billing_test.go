package forecast

import (
	"testing"

	"futureflow/internal/core"
)

func TestResolveStatementDate(t *testing.T) {
	standard := core.CardConfig{ID: "c1", Name: "Everyday", ClosingDay: 10, PaymentDay: 25}
	inverted := core.CardConfig{ID: "c2", Name: "Travel", ClosingDay: 25, PaymentDay: 10}

	tests := []struct {
		name     string
		purchase core.Date
		card     core.CardConfig
		want     core.Date
	}{
		{
			name:     "before closing pays same month",
			purchase: core.NewDate(2025, 3, 5),
			card:     standard,
			want:     core.NewDate(2025, 3, 25),
		},
		{
			name:     "after closing pays next month",
			purchase: core.NewDate(2025, 3, 15),
			card:     standard,
			want:     core.NewDate(2025, 4, 25),
		},
		{
			name:     "on closing day pays same month",
			purchase: core.NewDate(2025, 3, 10),
			card:     standard,
			want:     core.NewDate(2025, 3, 25),
		},
		{
			name:     "payment day below closing day rolls a month",
			purchase: core.NewDate(2025, 3, 5),
			card:     inverted,
			want:     core.NewDate(2025, 4, 10),
		},
		{
			name:     "after closing with inverted cycle rolls twice",
			purchase: core.NewDate(2025, 3, 26),
			card:     inverted,
			want:     core.NewDate(2025, 5, 10),
		},
		{
			name:     "year boundary",
			purchase: core.NewDate(2025, 12, 20),
			card:     standard,
			want:     core.NewDate(2026, 1, 25),
		},
		{
			name:     "payment day clamped to short month",
			purchase: core.NewDate(2025, 1, 29),
			card:     core.CardConfig{ID: "c3", Name: "Late", ClosingDay: 28, PaymentDay: 31},
			want:     core.NewDate(2025, 2, 28),
		},
		{
			name:     "payment day clamped in leap February",
			purchase: core.NewDate(2024, 1, 29),
			card:     core.CardConfig{ID: "c3", Name: "Late", ClosingDay: 28, PaymentDay: 31},
			want:     core.NewDate(2024, 2, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStatementDate(tt.purchase, tt.card)
			if !got.Equal(tt.want.Time) {
				t.Errorf("ResolveStatementDate(%v) = %v, want %v",
					tt.purchase.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}
