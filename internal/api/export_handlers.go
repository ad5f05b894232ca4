package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
)

var errArchiveDisabled = errors.New("EXPORT_S3_BUCKET is not configured")

// GetExport answers with the bare export document so the file can be fed
// straight back to POST /api/import.
func GetExport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := app.Now()
		doc, err := service.Export(c.Request.Context(), app.Store(), auth.CurrentUser(c), now)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to export data")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+service.ExportFilename(now)+`"`)
		c.JSON(http.StatusOK, doc)
	}
}

func PostImport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc service.ExportDocument
		if err := c.ShouldBindJSON(&doc); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		policy := service.DuplicatePolicy(app.Config().WeightDuplicatePolicy)
		res, err := service.Import(c.Request.Context(), app.Store(), auth.CurrentUser(c), &doc, policy, c.Query("dry_run") == "true")
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Import failed")
			return
		}
		HandleSuccess(c, app.Logger(), res, nil)
	}
}

func PostArchive(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Uploader() == nil {
			HandleError(c, app.Logger(), errArchiveDisabled, http.StatusNotImplemented, "Export archiving is disabled")
			return
		}
		key, err := service.ArchiveExport(c.Request.Context(), app.Store(), app.Uploader(), app.Config().ExportBucket, auth.CurrentUser(c), app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to archive export")
			return
		}
		HandleCreated(c, app.Logger(), gin.H{"bucket": app.Config().ExportBucket, "key": key})
	}
}
