package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	trackingService service.TrackingService
}

func NewTrackingHandler(trackingService service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleSales)

	orders := router.Group("/api/orders", staff)
	{
		orders.PUT("/:po_number/status", h.UpdateStatus)
		orders.POST("/:po_number/proof", h.UploadProof)
	}

	payments := router.Group("/api/payments", staff)
	{
		payments.GET("", h.ListPayments)
	}
}

// UpdateStatus advances an order along the tracking ladder
// @Summary      Update tracking status
// @Description  Moves an order one step forward; DELIVERED opens a PENDING payment with a 30-day ETA
// @Tags         tracking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        po_number  path      string                         true  "PO number"
// @Param        payload    body      service.UpdateTrackingRequest  true  "Target status"
// @Success      200        {object}  response.Response{data=service.CustomerOrderResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/orders/{po_number}/status [put]
func (h *TrackingHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.trackingService.UpdateStatus(c.Request.Context(), c.Param("po_number"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UploadProof attaches a delivery proof image to an order
// @Summary      Upload delivery proof
// @Tags         tracking
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        po_number  path      string  true  "PO number"
// @Param        file       formData  file    true  "Proof image"
// @Success      200        {object}  response.Response{data=service.CustomerOrderResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/orders/{po_number}/proof [post]
func (h *TrackingHandler) UploadProof(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload: "+err.Error()))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Cannot open upload: "+err.Error()))
		return
	}
	defer func() { _ = f.Close() }()

	order, err := h.trackingService.UploadProof(c.Request.Context(), c.Param("po_number"), fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ListPayments returns payments filtered by status
// @Summary      List payments
// @Tags         tracking
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by payment status (PENDING, PAID, OVERDUE)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/payments [get]
func (h *TrackingHandler) ListPayments(c *gin.Context) {
	p := pagination.Parse(c)

	payments, total, err := h.trackingService.ListPayments(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}
