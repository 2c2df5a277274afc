// Package billing реализует расчёт длительности стоянки и стоимости.
package billing

import (
	"errors"
	"time"

	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/mmeshcher/parking-system/internal/tariff"
)

// ErrNegativeDuration возвращается, если время выезда не позже времени въезда.
var ErrNegativeDuration = errors.New("exit time is not after entry time")

// Calculator вычисляет стоимость стоянки по тарифу.
type Calculator struct {
	tariff *tariff.Tariff
}

// NewCalculator создаёт калькулятор с указанным тарифом.
func NewCalculator(t *tariff.Tariff) *Calculator {
	return &Calculator{tariff: t}
}

// ComputeFee возвращает длительность стоянки в часах и стоимость в копейках.
// Неполный час округляется вверх, минимум — один час. Стоимость считается
// в копейках, поэтому результат точен и воспроизводим для одних и тех же
// аргументов.
func (c *Calculator) ComputeFee(entry, exit time.Time, class model.VehicleClass) (int, int64, error) {
	if !exit.After(entry) {
		return 0, 0, ErrNegativeDuration
	}

	seconds := exit.Sub(entry) / time.Second
	hours := int((seconds + 3599) / 3600)
	if hours < 1 {
		hours = 1
	}

	// Неизвестная категория отсекается при въезде; нулевой тариф остаётся
	// защитной заглушкой.
	fee := int64(hours) * c.tariff.RateCents(class)

	return hours, fee, nil
}
