package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/mmeshcher/parking-system/internal/tariff"
)

func TestComputeFee_HourBoundaries(t *testing.T) {
	calc := NewCalculator(tariff.Default())
	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		exit      time.Time
		wantHours int
	}{
		{
			name:      "one second bills the first hour",
			exit:      entry.Add(1 * time.Second),
			wantHours: 1,
		},
		{
			name:      "exactly one hour stays one hour",
			exit:      entry.Add(1 * time.Hour),
			wantHours: 1,
		},
		{
			name:      "one hour and a second starts the second hour",
			exit:      entry.Add(1*time.Hour + 1*time.Second),
			wantHours: 2,
		},
		{
			name:      "sub-second stay bills the minimum hour",
			exit:      entry.Add(500 * time.Millisecond),
			wantHours: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, _, err := calc.ComputeFee(entry, tt.exit, model.VehicleClassCar)
			if err != nil {
				t.Fatalf("ComputeFee error: %v", err)
			}
			if hours != tt.wantHours {
				t.Fatalf("hours = %d, want %d", hours, tt.wantHours)
			}
		})
	}
}

func TestComputeFee_CarScenario(t *testing.T) {
	calc := NewCalculator(tariff.Default())

	entry := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 1, 1, 11, 15, 0, 0, time.UTC)

	hours, feeCents, err := calc.ComputeFee(entry, exit, model.VehicleClassCar)
	if err != nil {
		t.Fatalf("ComputeFee error: %v", err)
	}
	if hours != 3 {
		t.Fatalf("hours = %d, want 3", hours)
	}
	if feeCents != 12000 {
		t.Fatalf("feeCents = %d, want 12000", feeCents)
	}
}

func TestComputeFee_Deterministic(t *testing.T) {
	calc := NewCalculator(tariff.Default())

	entry := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	exit := entry.Add(7*time.Hour + 12*time.Minute)

	h1, f1, err := calc.ComputeFee(entry, exit, model.VehicleClassVan)
	if err != nil {
		t.Fatalf("ComputeFee error: %v", err)
	}
	h2, f2, err := calc.ComputeFee(entry, exit, model.VehicleClassVan)
	if err != nil {
		t.Fatalf("ComputeFee error: %v", err)
	}

	if h1 != h2 || f1 != f2 {
		t.Fatalf("ComputeFee is not deterministic: (%d, %d) vs (%d, %d)", h1, f1, h2, f2)
	}
}

func TestComputeFee_NegativeDuration(t *testing.T) {
	calc := NewCalculator(tariff.Default())
	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	if _, _, err := calc.ComputeFee(entry, entry, model.VehicleClassBike); !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("equal times: err = %v, want ErrNegativeDuration", err)
	}

	if _, _, err := calc.ComputeFee(entry, entry.Add(-time.Minute), model.VehicleClassBike); !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("exit before entry: err = %v, want ErrNegativeDuration", err)
	}
}

func TestComputeFee_UnknownClassZeroRate(t *testing.T) {
	calc := NewCalculator(tariff.Default())
	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	_, feeCents, err := calc.ComputeFee(entry, entry.Add(2*time.Hour), model.VehicleClass("truck"))
	if err != nil {
		t.Fatalf("ComputeFee error: %v", err)
	}
	if feeCents != 0 {
		t.Fatalf("feeCents = %d, want 0 for unknown class", feeCents)
	}
}
