// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"

	"github.com/mmeshcher/parking-system/internal/model"
)

// NormalizePlate очищает распознанный текст номера: удаляет все символы,
// кроме букв и цифр, и приводит результат к верхнему регистру.
func NormalizePlate(raw string) string {
	var b strings.Builder
	for _, ch := range raw {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(unicode.ToUpper(ch))
		}
	}
	return b.String()
}

// ParseVehicleClass приводит пользовательский ввод категории к известному
// значению. Возвращает false, если категория не распознана.
func ParseVehicleClass(raw string) (model.VehicleClass, bool) {
	switch model.VehicleClass(strings.ToLower(strings.TrimSpace(raw))) {
	case model.VehicleClassCar:
		return model.VehicleClassCar, true
	case model.VehicleClassBike:
		return model.VehicleClassBike, true
	case model.VehicleClassVan:
		return model.VehicleClassVan, true
	case model.VehicleClassCycle:
		return model.VehicleClassCycle, true
	}
	return "", false
}
