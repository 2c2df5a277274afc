// Package service реализует бизнес-логику сервиса парковки.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/parking-system/internal/billing"
	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/mmeshcher/parking-system/internal/repository"
	"github.com/mmeshcher/parking-system/internal/resolver"
	"github.com/mmeshcher/parking-system/internal/tariff"
	"github.com/mmeshcher/parking-system/internal/validation"
)

// ErrMissingOwnerName возвращается, если имя владельца не указано и не найдено в истории.
var (
	ErrMissingOwnerName = errors.New("owner name is required")
	// ErrUnknownVehicleClass возвращается для категории, отсутствующей в тарифе.
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
	// ErrLotEmpty возвращается при попытке выезда с пустой парковки.
	ErrLotEmpty = errors.New("no vehicles are currently parked")
	// ErrReceiptNotReady возвращается для квитанции по ещё не завершённой записи.
	ErrReceiptNotReady = errors.New("vehicle has not checked out yet")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateRecord(ctx context.Context, vehicleNumber, ownerName string, class model.VehicleClass, capacity int) (*model.ParkingRecord, error)
	CompleteRecord(ctx context.Context, vehicleNumber string, exitTime time.Time, feeCents int64) error
	CountOccupiedByClass(ctx context.Context) (map[model.VehicleClass]int, error)
	FindLatestByVehicleNumber(ctx context.Context, vehicleNumber string) (*model.ParkingRecord, error)
	FindOccupiedByVehicleNumber(ctx context.Context, vehicleNumber string) (*model.ParkingRecord, error)
	GetRecordByID(ctx context.Context, id int64) (*model.ParkingRecord, error)
	ListRecords(ctx context.Context, filter repository.RecordFilter) ([]model.ParkingRecord, error)
}

// AvailabilityCache описывает кэш сводки свободных мест.
type AvailabilityCache interface {
	Get(ctx context.Context) (*model.Availability, bool, error)
	Set(ctx context.Context, av *model.Availability) error
}

// Service содержит бизнес-логику сервиса парковки.
type Service struct {
	repo   Repository
	tariff *tariff.Tariff
	calc   *billing.Calculator
	cache  AvailabilityCache
}

// NewService создаёт сервис с указанным репозиторием и тарифом.
// Кэш сводки может быть nil — тогда сводка всегда читается из хранилища.
func NewService(repo Repository, t *tariff.Tariff, cache AvailabilityCache) *Service {
	return &Service{
		repo:   repo,
		tariff: t,
		calc:   billing.NewCalculator(t),
		cache:  cache,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CheckInRequest содержит данные для регистрации въезда. OwnerName и
// VehicleClass могут быть пустыми: тогда они берутся из последней записи
// по этому номеру.
type CheckInRequest struct {
	VehicleNumber string
	OwnerName     string
	VehicleClass  string
}

// CheckIn регистрирует въезд транспортного средства. Вместимость категории
// и единственность активной записи контролируются хранилищем атомарно.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*model.ParkingRecord, error) {
	ident, err := resolver.Finalize(req.VehicleNumber)
	if err != nil {
		return nil, err
	}

	owner := req.OwnerName
	rawClass := req.VehicleClass

	// Подстановка данных из истории — только удобство для постоянных
	// посетителей; её сбой не препятствует въезду.
	if owner == "" || rawClass == "" {
		if latest, lookupErr := s.repo.FindLatestByVehicleNumber(ctx, ident.Canonical); lookupErr == nil && latest != nil {
			if owner == "" {
				owner = latest.OwnerName
			}
			if rawClass == "" {
				rawClass = string(latest.Class)
			}
		}
	}

	if owner == "" {
		return nil, ErrMissingOwnerName
	}

	class, ok := validation.ParseVehicleClass(rawClass)
	if !ok || !s.tariff.Known(class) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, rawClass)
	}

	return s.repo.CreateRecord(ctx, ident.Canonical, owner, class, s.tariff.Capacity(class))
}

// CheckOut регистрирует выезд и возвращает квитанцию. Условное обновление
// в хранилище гарантирует, что из двух одновременных выездов по одному
// номеру выиграет ровно один.
func (s *Service) CheckOut(ctx context.Context, vehicleNumber string) (*model.Receipt, error) {
	occupancy, err := s.Occupancy(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range occupancy {
		total += n
	}
	if total == 0 {
		return nil, ErrLotEmpty
	}

	ident, err := resolver.Finalize(vehicleNumber)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.FindOccupiedByVehicleNumber(ctx, ident.Canonical)
	if err != nil {
		return nil, err
	}

	exitTime := time.Now()

	hours, feeCents, err := s.calc.ComputeFee(rec.EntryTime, exitTime, rec.Class)
	if err != nil {
		// Аномалия часов или данных: запись остаётся активной для ручного разбора.
		return nil, err
	}

	if err := s.repo.CompleteRecord(ctx, ident.Canonical, exitTime, feeCents); err != nil {
		return nil, err
	}

	return &model.Receipt{
		RecordID:      rec.ID,
		VehicleNumber: ident.Display,
		OwnerName:     rec.OwnerName,
		Class:         rec.Class,
		EntryTime:     rec.EntryTime,
		ExitTime:      exitTime,
		DurationHours: hours,
		RateCents:     s.tariff.RateCents(rec.Class),
		FeeCents:      feeCents,
	}, nil
}

// Occupancy возвращает занятость по всем известным категориям.
// Категории без активных записей присутствуют с нулевым значением.
// Сбой запроса возвращается как ошибка и не выдаётся за пустую парковку.
func (s *Service) Occupancy(ctx context.Context) (map[model.VehicleClass]int, error) {
	counts, err := s.repo.CountOccupiedByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("query occupancy: %w", err)
	}

	res := make(map[model.VehicleClass]int, len(s.tariff.Classes()))
	for _, class := range s.tariff.Classes() {
		res[class] = counts[class]
	}

	return res, nil
}

// Availability возвращает сводку свободных мест, используя кэш при наличии.
func (s *Service) Availability(ctx context.Context) (*model.Availability, error) {
	if s.cache != nil {
		if av, ok, err := s.cache.Get(ctx); err == nil && ok {
			return av, nil
		}
	}

	av, err := s.computeAvailability(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, av)
	}

	return av, nil
}

func (s *Service) computeAvailability(ctx context.Context) (*model.Availability, error) {
	occupancy, err := s.Occupancy(ctx)
	if err != nil {
		return nil, err
	}

	av := &model.Availability{}
	for _, class := range s.tariff.Classes() {
		capacity := s.tariff.Capacity(class)
		occupied := occupancy[class]

		av.Classes = append(av.Classes, model.ClassAvailability{
			Class:     class,
			Capacity:  capacity,
			Occupied:  occupied,
			Available: capacity - occupied,
		})
		av.TotalCapacity += capacity
		av.TotalOccupied += occupied
		av.TotalAvailable += capacity - occupied
	}

	return av, nil
}

// ListOccupied возвращает активные записи в порядке убывания времени въезда.
func (s *Service) ListOccupied(ctx context.Context) ([]model.ParkingRecord, error) {
	status := model.RecordStatusIn
	return s.repo.ListRecords(ctx, repository.RecordFilter{Status: &status})
}

// ListAll возвращает все записи, включая завершённые.
func (s *Service) ListAll(ctx context.Context) ([]model.ParkingRecord, error) {
	return s.repo.ListRecords(ctx, repository.RecordFilter{})
}

// FindByVehicleNumber возвращает историю записей по номеру.
func (s *Service) FindByVehicleNumber(ctx context.Context, vehicleNumber string) ([]model.ParkingRecord, error) {
	ident, err := resolver.Finalize(vehicleNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecords(ctx, repository.RecordFilter{VehicleNumber: ident.Canonical})
}

// GetReceipt восстанавливает квитанцию завершённой записи по её идентификатору.
// Длительность пересчитывается из сохранённых отметок времени и поэтому
// совпадает с рассчитанной при выезде.
func (s *Service) GetReceipt(ctx context.Context, recordID int64) (*model.Receipt, error) {
	rec, err := s.repo.GetRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if rec.Status != model.RecordStatusOut || rec.ExitTime == nil || rec.FinalFee == nil {
		return nil, fmt.Errorf("%w: record %d", ErrReceiptNotReady, rec.ID)
	}

	hours, _, err := s.calc.ComputeFee(rec.EntryTime, *rec.ExitTime, rec.Class)
	if err != nil {
		return nil, err
	}

	ident := model.NewIdentifier(rec.VehicleNumber)

	return &model.Receipt{
		RecordID:      rec.ID,
		VehicleNumber: ident.Display,
		OwnerName:     rec.OwnerName,
		Class:         rec.Class,
		EntryTime:     rec.EntryTime,
		ExitTime:      *rec.ExitTime,
		DurationHours: hours,
		RateCents:     s.tariff.RateCents(rec.Class),
		FeeCents:      *rec.FinalFee,
	}, nil
}

// StartAvailabilityRefresh запускает фоновое обновление кэша сводки свободных мест.
func (s *Service) StartAvailabilityRefresh(ctx context.Context, interval time.Duration) {
	if s.cache == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				av, err := s.computeAvailability(ctx)
				if err != nil {
					continue
				}
				_ = s.cache.Set(ctx, av)
			}
		}
	}()
}
