package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleSales)

	orders := router.Group("/api/orders", staff)
	{
		orders.POST("", h.CreateCustomerOrder)
		orders.GET("", h.ListCustomerOrders)
		orders.POST("/supplier-split", h.SplitSupplierOrders)
		orders.GET("/suppliers", h.ListSupplierOrders)
		orders.GET("/:po_number/qr", h.TrackingQR)
	}
}

// CreateCustomerOrder registers an incoming customer PO
// @Summary      Create customer order
// @Description  Registers a customer PO, archives the uploaded file and starts tracking at RECEIVED
// @Tags         orders
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        customer_name  formData  string  true   "Customer name"
// @Param        total_value    formData  string  true   "Order value in VND"
// @Param        file           formData  file    false  "PO file"
// @Success      201            {object}  response.Response{data=service.CustomerOrderResponse}
// @Failure      400            {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateCustomerOrder(c *gin.Context) {
	var req service.CreateCustomerOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	filename := ""
	var file io.Reader
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Cannot open upload: "+openErr.Error()))
			return
		}
		defer func() { _ = f.Close() }()
		filename = fileHeader.Filename
		file = f
	}

	order, err := h.orderService.CreateCustomerOrder(c.Request.Context(), req, filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListCustomerOrders returns customer orders filtered by status
// @Summary      List customer orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by tracking status (RECEIVED, SHIPPING, ARRIVED, DELIVERED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	p := pagination.Parse(c)

	orders, total, err := h.orderService.ListCustomerOrders(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	}))
}

// SplitSupplierOrders splits a master purchase sheet per supplier
// @Summary      Split supplier orders
// @Description  Breaks a master purchase sheet into one archived workbook per supplier
// @Tags         orders
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Master purchase sheet (.xlsx or .csv)"
// @Success      201   {object}  response.Response{data=service.SupplierSplitResult}
// @Failure      400   {object}  response.Response
// @Router       /api/orders/supplier-split [post]
func (h *OrderHandler) SplitSupplierOrders(c *gin.Context) {
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

	result, err := h.orderService.SplitSupplierOrders(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListSupplierOrders returns archived supplier workbooks
// @Summary      List supplier orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        supplier  query     string  false  "Filter by supplier (partial match)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/orders/suppliers [get]
func (h *OrderHandler) ListSupplierOrders(c *gin.Context) {
	p := pagination.Parse(c)

	orders, total, err := h.orderService.ListSupplierOrders(c.Request.Context(), c.Query("supplier"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	}))
}

// TrackingQR renders a QR code pointing at the order's tracking page
// @Summary      Order tracking QR
// @Tags         orders
// @Security     BearerAuth
// @Produce      image/png
// @Param        po_number  path  string  true  "PO number"
// @Success      200
// @Failure      500  {object}  response.Response
// @Router       /api/orders/{po_number}/qr [get]
func (h *OrderHandler) TrackingQR(c *gin.Context) {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	url := fmt.Sprintf("%s/api/orders?po_number=%s", base, c.Param("po_number"))

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to render QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
