package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"compucar-promo/internal/middleware"
	"compucar-promo/internal/model"
	"compucar-promo/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PromoHandler handles promo code validation requests.
type PromoHandler struct {
	service service.PromoService
	logger  zerolog.Logger
}

// NewPromoHandler creates a new promo handler.
func NewPromoHandler(service service.PromoService, logger zerolog.Logger) *PromoHandler {
	return &PromoHandler{
		service: service,
		logger:  logger.With().Str("handler", "promo").Logger(),
	}
}

// validateData is the success payload for a validation call.
type validateData struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Validate handles POST /api/promotional-codes/validate requests.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var req model.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Validate(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to validate promo code", h.logger)
		return
	}

	if !result.Valid {
		writeError(w, http.StatusBadRequest, string(result.Reason), h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, validateData{
		Code:           result.Code,
		DiscountAmount: result.DiscountAmount,
	})
}
