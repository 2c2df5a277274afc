// Package model содержит доменные сущности сервиса парковки.
package model

import (
	"strings"
	"time"
)

// VehicleClass описывает категорию транспортного средства.
type VehicleClass string

const (
	VehicleClassCar   VehicleClass = "car"
	VehicleClassBike  VehicleClass = "bike"
	VehicleClassVan   VehicleClass = "van"
	VehicleClassCycle VehicleClass = "cycle"
)

// RecordStatus описывает состояние парковочной записи.
type RecordStatus string

const (
	RecordStatusIn  RecordStatus = "in"
	RecordStatusOut RecordStatus = "out"
)

// Identifier представляет нормализованный номер транспортного средства.
// Canonical используется как ключ хранения и поиска, Display — для вывода.
type Identifier struct {
	Canonical string
	Display   string
}

// NewIdentifier строит Identifier из уже очищенного номера.
func NewIdentifier(number string) Identifier {
	return Identifier{
		Canonical: strings.ToLower(number),
		Display:   strings.ToUpper(number),
	}
}

// ParkingRecord описывает один заезд транспортного средства.
// FinalFee хранится в копейках и заполняется только после выезда.
type ParkingRecord struct {
	ID            int64
	VehicleNumber string
	OwnerName     string
	Class         VehicleClass
	EntryTime     time.Time
	ExitTime      *time.Time
	Status        RecordStatus
	FinalFee      *int64
}

// Receipt содержит итог выезда для формирования квитанции.
type Receipt struct {
	RecordID      int64
	VehicleNumber string
	OwnerName     string
	Class         VehicleClass
	EntryTime     time.Time
	ExitTime      time.Time
	DurationHours int
	RateCents     int64
	FeeCents      int64
}

// ClassAvailability содержит занятость одной категории.
type ClassAvailability struct {
	Class     VehicleClass `json:"vehicle_class"`
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
}

// Availability содержит сводку свободных мест по всем категориям.
type Availability struct {
	Classes        []ClassAvailability `json:"classes"`
	TotalCapacity  int                 `json:"total_capacity"`
	TotalOccupied  int                 `json:"total_occupied"`
	TotalAvailable int                 `json:"total_available"`
}
