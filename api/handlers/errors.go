package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/vitalwatch/internal/forecast"
	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/internal/monitor"
	"github.com/OldStager01/vitalwatch/internal/risk"
	"github.com/OldStager01/vitalwatch/pkg/database/queries"
	"github.com/OldStager01/vitalwatch/pkg/validation"
)

// respondError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput),
		errors.Is(err, risk.ErrUnknownPolicy),
		errors.Is(err, forecast.ErrInvalidHorizon):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, forecast.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough data yet", "detail": err.Error()})
	case errors.Is(err, monitor.ErrNoAssessment):
		c.JSON(http.StatusNotFound, gin.H{"error": "no risk assessment for patient"})
	case errors.Is(err, queries.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
	default:
		logger.ErrorCtxf(c.Request.Context(), "Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
