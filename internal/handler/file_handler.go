package handler

import (
	"io"
	"net/http"
	"strings"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/storage"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	blobs storage.BlobStore
}

func NewFileHandler(blobs storage.BlobStore) *FileHandler {
	return &FileHandler{blobs: blobs}
}

func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	files := router.Group("/api/files")
	{
		files.GET("/*ref", middleware.RequireRole(model.RoleAdmin, model.RoleSales), h.Download)
	}
}

// Download streams a stored blob back by its ref
// @Summary      Download file
// @Description  Streams an archived blob (quote backup, PO file, proof image) by its ref
// @Tags         files
// @Security     BearerAuth
// @Produce      application/octet-stream
// @Param        ref  path  string  true  "Blob ref"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/files/{ref} [get]
func (h *FileHandler) Download(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	if ref == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file ref"))
		return
	}

	r, err := h.blobs.Open(ref)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	defer func() { _ = r.Close() }()

	parts := strings.Split(ref, "/")
	c.Header("Content-Disposition", "attachment; filename="+parts[len(parts)-1])
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, r)
}
