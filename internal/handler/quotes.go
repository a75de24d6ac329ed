package handler

import (
	"net/http"

	"calhaforte/internal/apierror"
	"calhaforte/internal/dto"
	"calhaforte/internal/service"

	"github.com/gin-gonic/gin"
)

// QuotesHandler serves the quote lifecycle: submission, lookup, discount,
// payment proof, and status changes.
type QuotesHandler struct {
	quotes service.QuoteService
	status service.StatusService
}

func NewQuotesHandler(quotes service.QuoteService, status service.StatusService) *QuotesHandler {
	return &QuotesHandler{quotes: quotes, status: status}
}

// Submit godoc
// @Summary Submit a quote with one or more bends
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.SubmitQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/quotes [post]
func (h *QuotesHandler) Submit(c *gin.Context) {
	var req dto.SubmitQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.quotes.Submit(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ManualCreate godoc
// @Summary Create a quote manually with a chosen initial status (admin)
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.ManualQuoteRequest true "Manual quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 403 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/quotes/manual [post]
func (h *QuotesHandler) ManualCreate(c *gin.Context) {
	var req dto.ManualQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.quotes.ManualCreate(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Fetch one quote with its bends
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/quotes/{id} [get]
func (h *QuotesHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.quotes.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List quotes (customers see only their own)
// @Tags quotes
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.QuoteListResponse
// @Security BearerAuth
// @Router /v1/quotes [get]
func (h *QuotesHandler) List(c *gin.Context) {
	var filter dto.QuoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	resp, err := h.quotes.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeStatus godoc
// @Summary Transition a quote to a new status
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body dto.ChangeStatusRequest true "Target status"
// @Success 200 {object} dto.QuoteResponse
// @Failure 409 {object} apierror.APIError "invalid transition, insufficient stock, or confirmation required"
// @Security BearerAuth
// @Router /v1/quotes/{id}/status [patch]
func (h *QuotesHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.status.ChangeStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyDiscount godoc
// @Summary Apply a discount with a mandatory reason (admin)
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body dto.DiscountRequest true "Discount"
// @Success 200 {object} dto.QuoteResponse
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/quotes/{id}/discount [post]
func (h *QuotesHandler) ApplyDiscount(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.DiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.quotes.ApplyDiscount(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AttachPaymentProof godoc
// @Summary Attach a payment proof reference to a pending quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body dto.PaymentProofRequest true "Document reference"
// @Success 200 {object} dto.QuoteResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/quotes/{id}/payment-proof [post]
func (h *QuotesHandler) AttachPaymentProof(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentProofRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.quotes.AttachPaymentProof(c.Request.Context(), actorFrom(c), id, req.DocumentRef)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
