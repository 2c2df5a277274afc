package validation

import (
	"testing"

	"github.com/mmeshcher/parking-system/internal/model"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already clean", raw: "KA01AB1234", want: "KA01AB1234"},
		{name: "lowercase", raw: "ka01ab1234", want: "KA01AB1234"},
		{name: "ocr noise", raw: " KA-01 AB·1234\n", want: "KA01AB1234"},
		{name: "underscores and punctuation", raw: "_KA_01/AB.1234_", want: "KA01AB1234"},
		{name: "only noise", raw: "-- __ ..", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePlate(tt.raw); got != tt.want {
				t.Fatalf("NormalizePlate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseVehicleClass(t *testing.T) {
	tests := []struct {
		raw   string
		want  model.VehicleClass
		known bool
	}{
		{raw: "car", want: model.VehicleClassCar, known: true},
		{raw: "Car", want: model.VehicleClassCar, known: true},
		{raw: " VAN ", want: model.VehicleClassVan, known: true},
		{raw: "bike", want: model.VehicleClassBike, known: true},
		{raw: "cycle", want: model.VehicleClassCycle, known: true},
		{raw: "truck", known: false},
		{raw: "", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseVehicleClass(tt.raw)
			if ok != tt.known {
				t.Fatalf("ParseVehicleClass(%q) known = %v, want %v", tt.raw, ok, tt.known)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseVehicleClass(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
