package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/mathmusci/optivenue/internal/service"
)

const (
	FileTypeVenues    = "venues"
	FileTypePersonnel = "personnel"
)

type ImportHandler struct {
	importService service.ImportService
}

func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Import loads an uploaded CSV file. The form carries file_type and file.
func (h *ImportHandler) Import(c *gin.Context) {
	var ve entity.ValidationError

	fileType := c.PostForm("file_type")
	if fileType != FileTypeVenues && fileType != FileTypePersonnel {
		ve.Add("file_type", "must be %q or %q", FileTypeVenues, FileTypePersonnel)
	}
	header, err := c.FormFile("file")
	if err != nil {
		ve.Add("file", "is required")
	}
	if err := ve.Err(); err != nil {
		abortWithError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()

	var summary *service.ImportSummary
	if fileType == FileTypeVenues {
		summary, err = h.importService.ImportVenues(c.Request.Context(), f)
	} else {
		summary, err = h.importService.ImportPersonnel(c.Request.Context(), f)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file_type": fileType, "file_name": header.Filename, "summary": summary})
}
