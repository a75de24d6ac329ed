package handler

import (
	"net/http"

	"calhaforte/internal/dto"
	"calhaforte/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the stateless profile preview used by the quote
// builder UI while the customer is still adding segments.
type ProfileHandler struct {
	quotes service.QuoteService
}

func NewProfileHandler(quotes service.QuoteService) *ProfileHandler {
	return &ProfileHandler{quotes: quotes}
}

// Preview godoc
// @Summary Validate and measure an in-progress bend profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body dto.ProfilePreviewRequest true "Segments and optional lengths"
// @Success 200 {object} dto.ProfilePreviewResponse
// @Failure 422 {object} apierror.APIError "reversal, invalid size, or width ceiling exceeded"
// @Security BearerAuth
// @Router /v1/profile/preview [post]
func (h *ProfileHandler) Preview(c *gin.Context) {
	var req dto.ProfilePreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.quotes.Preview(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
