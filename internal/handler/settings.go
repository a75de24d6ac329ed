package handler

import (
	"net/http"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the shop-tunable business values.
type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Current unit price, width ceiling, and low-stock threshold
// @Tags settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Security BearerAuth
// @Router /v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}

// Update godoc
// @Summary Change unit price, width ceiling, or low-stock threshold (admin)
// @Tags settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} dto.SettingsResponse
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/settings [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	st, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}

func settingsToResponse(st *model.Settings) dto.SettingsResponse {
	return dto.SettingsResponse{
		PricePerM2:          st.PricePerM2,
		MaxWidthCm:          st.MaxWidthCm,
		LowStockThresholdM2: st.LowStockThresholdM2,
	}
}
