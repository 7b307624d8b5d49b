package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto HTTP statuses. Errors it does not
// recognise are answered with fallback.
func writeError(c *gin.Context, err error, fallback int) {
	var validationErr *models.ValidationError
	var storageErr *models.StorageError

	status := fallback
	body := gin.H{"ok": false, "error": err.Error()}

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body["field"] = validationErr.Field
	case errors.Is(err, models.ErrUnknownSection):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		status = http.StatusConflict
	case errors.As(err, &storageErr):
		status = http.StatusInternalServerError
		body["error"] = "storage failure"
	case errors.Is(err, models.ErrConfiguration):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, body)
}
