package handler

import (
	"net/http"

	"calhaforte/internal/apierror"
	"calhaforte/internal/dto"
	"calhaforte/internal/service"

	"github.com/gin-gonic/gin"
)

// InventoryHandler serves raw-material batches and the movement ledger.
type InventoryHandler struct {
	inventory service.InventoryService
}

func NewInventoryHandler(inventory service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// AddBatches godoc
// @Summary Register one or more identical material batches (admin)
// @Tags inventory
// @Accept json
// @Produce json
// @Param request body dto.AddBatchesRequest true "Batch dimensions, cost, quantity"
// @Success 201 {array} dto.BatchResponse
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/inventory/batches [post]
func (h *InventoryHandler) AddBatches(c *gin.Context) {
	var req dto.AddBatchesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.inventory.AddBatches(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListBatches godoc
// @Summary List material batches with remaining stock
// @Tags inventory
// @Produce json
// @Success 200 {array} dto.BatchResponse
// @Security BearerAuth
// @Router /v1/inventory/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	resp, err := h.inventory.ListBatches(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteBatch godoc
// @Summary Delete an untouched batch (admin)
// @Tags inventory
// @Produce json
// @Param id path string true "Batch ID"
// @Success 204
// @Failure 409 {object} apierror.APIError "batch has consumption history"
// @Security BearerAuth
// @Router /v1/inventory/batches/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.inventory.DeleteBatch(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMovements godoc
// @Summary Browse the append-only movement ledger
// @Tags inventory
// @Produce json
// @Param quote_id query string false "Filter by quote"
// @Param batch_id query string false "Filter by batch"
// @Param type query string false "entry | consumption | restoration | reversal"
// @Success 200 {object} dto.MovementListResponse
// @Security BearerAuth
// @Router /v1/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	resp, err := h.inventory.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockAlert godoc
// @Summary Current stock total versus the low-stock threshold
// @Tags inventory
// @Produce json
// @Success 200 {object} dto.StockAlertResponse
// @Security BearerAuth
// @Router /v1/inventory/alerts [get]
func (h *InventoryHandler) StockAlert(c *gin.Context) {
	resp, err := h.inventory.StockAlert(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
