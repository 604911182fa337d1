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

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/api/catalog")
	{
		catalog.POST("/import", middleware.RequireRole(model.RoleAdmin), h.ImportCatalog)
		catalog.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleSales), h.ListCatalog)
		catalog.POST("/:id/image", middleware.RequireRole(model.RoleAdmin, model.RoleSales), h.UploadImage)
		catalog.DELETE("", middleware.RequireRole(model.RoleAdmin), h.ClearCatalog)
	}
}

// ImportCatalog uploads a supplier price list and upserts it into the catalog
// @Summary      Import catalog
// @Description  Parses an .xlsx or .csv price list and upserts rows keyed on specs
// @Tags         catalog
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Price list file (.xlsx or .csv)"
// @Success      200   {object}  response.Response{data=service.ImportCatalogResult}
// @Failure      400   {object}  response.Response
// @Router       /api/catalog/import [post]
func (h *CatalogHandler) ImportCatalog(c *gin.Context) {
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

	result, err := h.catalogService.ImportCatalog(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListCatalog returns a paginated, searchable view of the catalog
// @Summary      List catalog
// @Description  Retrieves catalog items ordered by sheet No, with optional search over code, name, specs and supplier
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search term"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/catalog [get]
func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	p := pagination.Parse(c)

	items, total, err := h.catalogService.ListCatalog(c.Request.Context(), service.CatalogFilter{
		Search: c.Query("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// UploadImage attaches a product image to a catalog item
// @Summary      Upload item image
// @Description  Stores a product image in the blob store and links it to the item
// @Tags         catalog
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Catalog item ID"
// @Param        file  formData  file    true  "Image file"
// @Success      200   {object}  response.Response{data=object}
// @Failure      400   {object}  response.Response
// @Router       /api/catalog/{id}/image [post]
func (h *CatalogHandler) UploadImage(c *gin.Context) {
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

	ref, err := h.catalogService.UploadItemImage(c.Request.Context(), c.Param("id"), fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"image_ref": ref}))
}

// ClearCatalog wipes the whole catalog table
// @Summary      Clear catalog
// @Description  Deletes every catalog item ahead of a fresh import
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/catalog [delete]
func (h *CatalogHandler) ClearCatalog(c *gin.Context) {
	if err := h.catalogService.ClearCatalog(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "catalog cleared"))
}
