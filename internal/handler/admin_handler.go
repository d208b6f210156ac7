package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"compucar-promo/internal/model"
	"compucar-promo/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler handles administrative promo code management requests.
type AdminHandler struct {
	service service.PromoService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.PromoService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// Create handles POST /api/promotional-codes requests.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		case errors.Is(err, model.ErrDuplicateCode):
			writeError(w, http.StatusConflict, err.Error(), h.logger)
		default:
			writeError(w, http.StatusInternalServerError, "failed to create promo code", h.logger)
		}
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}

// List handles GET /api/promotional-codes requests.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset parameter", h.logger)
		return
	}

	promos, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list promo codes", h.logger)
		return
	}

	if promos == nil {
		promos = []model.PromoCode{}
	}

	writeSuccess(w, http.StatusOK, promos)
}

// Get handles GET /api/promotional-codes/{code} requests.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	promo, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve promo code", h.logger)
		return
	}

	if promo == nil {
		writeError(w, http.StatusNotFound, "promo code not found", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, promo)
}

// Deactivate handles POST /api/promotional-codes/{code}/deactivate requests.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.service.Deactivate(r.Context(), code); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		case errors.Is(err, model.ErrPromoNotFound):
			writeError(w, http.StatusNotFound, err.Error(), h.logger)
		default:
			writeError(w, http.StatusInternalServerError, "failed to deactivate promo code", h.logger)
		}
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid integer parameter")
	}
	return parsed, nil
}
