package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/mmeshcher/parking-system/internal/model"
)

func TestRender(t *testing.T) {
	text, err := Render(&model.Receipt{
		RecordID:      7,
		VehicleNumber: "KA01AB1234",
		OwnerName:     "Ravi",
		Class:         model.VehicleClassCar,
		EntryTime:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		ExitTime:      time.Date(2024, 1, 1, 11, 15, 0, 0, time.UTC),
		DurationHours: 3,
		RateCents:     4000,
		FeeCents:      12000,
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	for _, want := range []string{
		"KA01AB1234",
		"Ravi",
		"3 hour(s)",
		"Rs.40.00/hr",
		"Rs.120.00",
		"2024-01-01 09:00",
		"2024-01-01 11:15",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt does not contain %q:\n%s", want, text)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 12000, want: "120.00"},
		{cents: 4050, want: "40.50"},
		{cents: 5, want: "0.05"},
	}

	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.want {
			t.Fatalf("formatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
