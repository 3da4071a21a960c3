package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

// UploadHandler imports shipment spreadsheets.
type UploadHandler struct {
	svc     *service.ImportService
	maxSize int64
}

func NewUploadHandler(svc *service.ImportService, maxSize int64) *UploadHandler {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &UploadHandler{svc: svc, maxSize: maxSize}
}

// UploadExcel parses an .xlsx file sent as multipart field "file".
// POST /api/upload/excel
func (h *UploadHandler) UploadExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "No file uploaded")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		BadRequest(c, "Only .xlsx files are allowed")
		return
	}
	if fileHeader.Size > h.maxSize {
		BadRequest(c, fmt.Sprintf("File too large (max %dMB)", h.maxSize>>20))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file: "+err.Error())
		return
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, h.maxSize+1))
	if err != nil {
		InternalError(c, "Failed to read uploaded file: "+err.Error())
		return
	}

	result := h.svc.Upload(c.Request.Context(), &service.UploadRequest{
		UserID:   GetUserID(c),
		UserName: c.GetString("user_name"),
		FileName: fileHeader.Filename,
		Content:  content,
	})
	if !result.Success() {
		c.JSON(http.StatusBadRequest, Response{
			Success:  false,
			Message:  "Failed to parse Excel file",
			Errors:   result.Errors,
			Warnings: result.Warnings,
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:  true,
		Message:  "File parsed successfully",
		Data:     result.Data,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}
