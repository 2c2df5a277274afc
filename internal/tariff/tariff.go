// Package tariff содержит конфигурацию вместимости и почасовых тарифов парковки.
package tariff

import "github.com/mmeshcher/parking-system/internal/model"

// ClassTariff описывает вместимость и почасовой тариф одной категории.
type ClassTariff struct {
	Capacity  int
	RateCents int64
}

// Tariff задаёт параметры всех известных категорий. Структура неизменяема
// после создания и передаётся зависимым компонентам при старте.
type Tariff struct {
	classes map[model.VehicleClass]ClassTariff
	order   []model.VehicleClass
}

// New создаёт тариф из набора категорий. Порядок перечисления сохраняется
// для стабильного вывода сводок.
func New(classes map[model.VehicleClass]ClassTariff, order []model.VehicleClass) *Tariff {
	cp := make(map[model.VehicleClass]ClassTariff, len(classes))
	for c, t := range classes {
		cp[c] = t
	}
	return &Tariff{classes: cp, order: append([]model.VehicleClass(nil), order...)}
}

// Default возвращает тариф парковки по умолчанию.
func Default() *Tariff {
	return New(map[model.VehicleClass]ClassTariff{
		model.VehicleClassCar:   {Capacity: 50, RateCents: 4000},
		model.VehicleClassBike:  {Capacity: 100, RateCents: 2000},
		model.VehicleClassVan:   {Capacity: 20, RateCents: 6000},
		model.VehicleClassCycle: {Capacity: 30, RateCents: 1000},
	}, []model.VehicleClass{
		model.VehicleClassCar,
		model.VehicleClassBike,
		model.VehicleClassVan,
		model.VehicleClassCycle,
	})
}

// Classes возвращает категории в порядке объявления.
func (t *Tariff) Classes() []model.VehicleClass {
	return append([]model.VehicleClass(nil), t.order...)
}

// Known сообщает, известна ли категория тарифу.
func (t *Tariff) Known(class model.VehicleClass) bool {
	_, ok := t.classes[class]
	return ok
}

// Capacity возвращает вместимость категории. Для неизвестной категории — 0.
func (t *Tariff) Capacity(class model.VehicleClass) int {
	return t.classes[class].Capacity
}

// RateCents возвращает почасовой тариф категории в копейках.
// Для неизвестной категории — 0.
func (t *Tariff) RateCents(class model.VehicleClass) int64 {
	return t.classes[class].RateCents
}
