package handler

import (
	"net/http"
	"strconv"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/pricing"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleSales)

	sessions := router.Group("/api/quotes/sessions", staff)
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PUT("/:id/lines/:no", h.UpdateLine)
		sessions.DELETE("/:id/lines/:no", h.DeleteLine)
		sessions.POST("/:id/formula", h.ApplyFormula)
		sessions.POST("/:id/params", h.ApplyParams)
		sessions.POST("/:id/save", h.SaveQuote)
		sessions.GET("/:id/export", h.ExportQuote)
		sessions.GET("/:id/specs-pdf", h.ExportSpecsPDF)
	}

	quotes := router.Group("/api/quotes", staff)
	{
		quotes.GET("", h.ListQuotes)
		quotes.GET("/:id", h.GetQuote)
	}
}

// CreateSession opens a quote working session from an RFQ upload
// @Summary      Create quote session
// @Description  Parses an RFQ file, matches it against the catalog and opens an in-memory pricing session
// @Tags         quotes
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        customer  formData  string  true  "Customer name"
// @Param        file      formData  file    true  "RFQ file (.xlsx or .csv)"
// @Success      201       {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      400       {object}  response.Response
// @Router       /api/quotes/sessions [post]
func (h *QuoteHandler) CreateSession(c *gin.Context) {
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

	sess, err := h.quoteService.CreateSession(c.Request.Context(), c.PostForm("customer"), fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sess))
}

// GetSession returns the current state of a quote session
// @Summary      Get quote session
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/sessions/{id} [get]
func (h *QuoteHandler) GetSession(c *gin.Context) {
	sess, err := h.quoteService.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// UpdateLine patches the editable inputs of one session line
// @Summary      Update session line
// @Description  Patches editable fields of a line; the whole grid is recalculated afterwards
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Session ID"
// @Param        no       path      int                        true  "Line number"
// @Param        payload  body      service.UpdateLineRequest  true  "Fields to patch"
// @Success      200      {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/sessions/{id}/lines/{no} [put]
func (h *QuoteHandler) UpdateLine(c *gin.Context) {
	lineNo, err := strconv.Atoi(c.Param("no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid line number"))
		return
	}

	var req service.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.quoteService.UpdateLine(c.Param("id"), lineNo, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// DeleteLine removes one line from a session
// @Summary      Delete session line
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        no   path      int     true  "Line number"
// @Success      200  {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/quotes/sessions/{id}/lines/{no} [delete]
func (h *QuoteHandler) DeleteLine(c *gin.Context) {
	lineNo, err := strconv.Atoi(c.Param("no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid line number"))
		return
	}

	sess, err := h.quoteService.DeleteLine(c.Param("id"), lineNo)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// ApplyFormula prices every line with an arithmetic formula
// @Summary      Apply pricing formula
// @Description  Evaluates a formula like "=BUY*1.1" or "=AP+10%" per line into the target column
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Session ID"
// @Param        payload  body      service.ApplyFormulaRequest  true  "Formula payload"
// @Success      200      {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/sessions/{id}/formula [post]
func (h *QuoteHandler) ApplyFormula(c *gin.Context) {
	var req service.ApplyFormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.quoteService.ApplyFormula(c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// ApplyParams applies the seven global cost parameters to every line
// @Summary      Apply global parameters
// @Description  Seeds fee columns from the percentage parameters and recalculates; idempotent
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Session ID"
// @Param        payload  body      pricing.GlobalParams  true  "Global parameters"
// @Success      200      {object}  response.Response{data=service.QuoteSessionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/sessions/{id}/params [post]
func (h *QuoteHandler) ApplyParams(c *gin.Context) {
	var params pricing.GlobalParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sess, err := h.quoteService.ApplyParams(c.Param("id"), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// SaveQuote freezes the session as a write-once history record
// @Summary      Save quote
// @Description  Persists the session lines with a fresh quote number and archives the workbook backup
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      201  {object}  response.Response{data=service.SaveQuoteResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/quotes/sessions/{id}/save [post]
func (h *QuoteHandler) SaveQuote(c *gin.Context) {
	saved, err := h.quoteService.SaveQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, saved))
}

// ExportQuote downloads the customer-facing quotation workbook
// @Summary      Export quotation
// @Description  Renders the customer-facing sheet without internal cost columns
// @Tags         quotes
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id  path  string  true  "Session ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/sessions/{id}/export [get]
func (h *QuoteHandler) ExportQuote(c *gin.Context) {
	buf, name, err := h.quoteService.ExportQuote(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportSpecsPDF downloads the line specifications as a PDF
// @Summary      Export specs PDF
// @Tags         quotes
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id  path  string  true  "Session ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/sessions/{id}/specs-pdf [get]
func (h *QuoteHandler) ExportSpecsPDF(c *gin.Context) {
	buf, name, err := h.quoteService.ExportSpecsPDF(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ListQuotes returns the saved quote history
// @Summary      List quotes
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        customer  query     string  false  "Filter by customer (partial match)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	p := pagination.Parse(c)

	quotes, total, err := h.quoteService.ListQuotes(c.Request.Context(), c.Query("customer"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	}))
}

// GetQuote returns one saved quote with its lines
// @Summary      Get quote
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=model.Quote}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
