package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/parking-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса парковки.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Post("/api/operator/session", h.OpenSession)

	r.Get("/api/parking/availability", h.GetAvailability)

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/api/parking/suggest", h.SuggestPlate)
		r.Post("/api/parking/checkin", h.CheckIn)
		r.Post("/api/parking/checkout", h.CheckOut)

		r.Get("/api/parking/records", h.ListRecords)
		r.Get("/api/parking/records/{id}/receipt", h.GetReceipt)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
