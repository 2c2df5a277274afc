// Package handler содержит HTTP-обработчики API сервиса парковки.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/parking-system/internal/middleware"
	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/mmeshcher/parking-system/internal/receipt"
	"github.com/mmeshcher/parking-system/internal/recognition"
	"github.com/mmeshcher/parking-system/internal/repository"
	"github.com/mmeshcher/parking-system/internal/resolver"
	"github.com/mmeshcher/parking-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CheckIn(ctx context.Context, req service.CheckInRequest) (*model.ParkingRecord, error)
	CheckOut(ctx context.Context, vehicleNumber string) (*model.Receipt, error)
	Availability(ctx context.Context) (*model.Availability, error)
	ListOccupied(ctx context.Context) ([]model.ParkingRecord, error)
	ListAll(ctx context.Context) ([]model.ParkingRecord, error)
	FindByVehicleNumber(ctx context.Context, vehicleNumber string) ([]model.ParkingRecord, error)
	GetReceipt(ctx context.Context, recordID int64) (*model.Receipt, error)
}

// Suggester определяет контракт подсказки номера по изображению.
type Suggester interface {
	Suggest(ctx context.Context, imageHandle string) (string, error)
}

// Handler реализует HTTP-обработчики API сервиса парковки.
type Handler struct {
	service        Service
	suggester      Suggester
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// Suggester может быть nil, если сервис распознавания не настроен.
func NewHandler(s Service, suggester Suggester, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		suggester:      suggester,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionRequest struct {
	Name string `json:"name"`
}

// OpenSession открывает сессию оператора и устанавливает подписанный cookie.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	h.authMiddleware.SetAuthCookie(w, req.Name)
	w.WriteHeader(http.StatusOK)
}

type suggestRequest struct {
	Image string `json:"image"`
}

type suggestResponse struct {
	VehicleNumber string `json:"vehicle_number"`
	SourceFailed  bool   `json:"source_failed"`
}

// SuggestPlate возвращает распознанный номер для подтверждения оператором.
// Сбой распознавания — не ошибка: оператор вводит номер вручную.
func (h *Handler) SuggestPlate(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	number, err := h.suggester.Suggest(r.Context(), req.Image)
	if err != nil {
		if errors.Is(err, recognition.ErrPlateNotFound) {
			writeJSON(w, http.StatusOK, suggestResponse{SourceFailed: true})
			return
		}
		h.logger.Error("recognition error", zap.Error(err))
		writeJSON(w, http.StatusOK, suggestResponse{SourceFailed: true})
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{VehicleNumber: number})
}

type checkInRequest struct {
	VehicleNumber string `json:"vehicle_number"`
	OwnerName     string `json:"owner_name"`
	VehicleClass  string `json:"vehicle_class"`
}

type recordResponse struct {
	ID            int64    `json:"id"`
	VehicleNumber string   `json:"vehicle_number"`
	OwnerName     string   `json:"owner_name"`
	VehicleClass  string   `json:"vehicle_class"`
	EntryTime     string   `json:"entry_time"`
	ExitTime      *string  `json:"exit_time,omitempty"`
	Status        string   `json:"status"`
	FinalFee      *float64 `json:"final_fee,omitempty"`
}

func toRecordResponse(rec *model.ParkingRecord) recordResponse {
	resp := recordResponse{
		ID:            rec.ID,
		VehicleNumber: model.NewIdentifier(rec.VehicleNumber).Display,
		OwnerName:     rec.OwnerName,
		VehicleClass:  string(rec.Class),
		EntryTime:     rec.EntryTime.Format(time.RFC3339),
		Status:        string(rec.Status),
	}
	if rec.ExitTime != nil {
		v := rec.ExitTime.Format(time.RFC3339)
		resp.ExitTime = &v
	}
	if rec.FinalFee != nil {
		v := float64(*rec.FinalFee) / 100
		resp.FinalFee = &v
	}
	return resp
}

// CheckIn регистрирует въезд транспортного средства.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rec, err := h.service.CheckIn(r.Context(), service.CheckInRequest{
		VehicleNumber: req.VehicleNumber,
		OwnerName:     req.OwnerName,
		VehicleClass:  req.VehicleClass,
	})
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrEmptyIdentifier), errors.Is(err, service.ErrMissingOwnerName):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUnknownVehicleClass):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		case errors.Is(err, repository.ErrClassFull), errors.Is(err, repository.ErrVehicleAlreadyParked):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("check-in error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

type checkOutRequest struct {
	VehicleNumber string `json:"vehicle_number"`
}

type receiptResponse struct {
	RecordID      int64   `json:"record_id"`
	VehicleNumber string  `json:"vehicle_number"`
	OwnerName     string  `json:"owner_name"`
	VehicleClass  string  `json:"vehicle_class"`
	EntryTime     string  `json:"entry_time"`
	ExitTime      string  `json:"exit_time"`
	DurationHours int     `json:"duration_hours"`
	HourlyRate    float64 `json:"hourly_rate"`
	Fee           float64 `json:"fee"`
}

func toReceiptResponse(rcpt *model.Receipt) receiptResponse {
	return receiptResponse{
		RecordID:      rcpt.RecordID,
		VehicleNumber: rcpt.VehicleNumber,
		OwnerName:     rcpt.OwnerName,
		VehicleClass:  string(rcpt.Class),
		EntryTime:     rcpt.EntryTime.Format(time.RFC3339),
		ExitTime:      rcpt.ExitTime.Format(time.RFC3339),
		DurationHours: rcpt.DurationHours,
		HourlyRate:    float64(rcpt.RateCents) / 100,
		Fee:           float64(rcpt.FeeCents) / 100,
	}
}

// CheckOut регистрирует выезд и возвращает квитанцию.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rcpt, err := h.service.CheckOut(r.Context(), req.VehicleNumber)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrEmptyIdentifier):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrLotEmpty),
			errors.Is(err, repository.ErrVehicleNotParked),
			errors.Is(err, repository.ErrAlreadyCheckedOut):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("check-out error", zap.Error(err), zap.String("vehicle", req.VehicleNumber))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, toReceiptResponse(rcpt))
}

// ListRecords возвращает записи по необязательным фильтрам status и vehicle_number.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	var (
		records []model.ParkingRecord
		err     error
	)

	number := r.URL.Query().Get("vehicle_number")
	status := r.URL.Query().Get("status")

	switch {
	case number != "":
		records, err = h.service.FindByVehicleNumber(r.Context(), number)
	case status == string(model.RecordStatusIn):
		records, err = h.service.ListOccupied(r.Context())
	default:
		records, err = h.service.ListAll(r.Context())
	}

	if err != nil {
		if errors.Is(err, resolver.ErrEmptyIdentifier) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("list records error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]recordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, toRecordResponse(&records[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetAvailability возвращает сводку свободных мест.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	av, err := h.service.Availability(r.Context())
	if err != nil {
		h.logger.Error("availability error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, av)
}

// GetReceipt отдаёт текстовую квитанцию завершённой записи.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rcpt, err := h.service.GetReceipt(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrReceiptNotReady):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("get receipt error", zap.Error(err), zap.Int64("recordID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	text, err := receipt.Render(rcpt)
	if err != nil {
		h.logger.Error("render receipt error", zap.Error(err), zap.Int64("recordID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
