package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/jobscout-api/internal/repository"
	"github.com/yourusername/jobscout-api/internal/service"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrEmptyCriteria),
		errors.Is(err, repository.ErrNoCriteria),
		errors.Is(err, repository.ErrNoCompaniesSelected):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrCompanyNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAnalysisInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// respondSearchError reports a failed company search. Upstream failures get
// the localized message the UI shows to the user.
func respondSearchError(c *gin.Context, err error, msgs service.Messages) {
	if statusFor(err) != http.StatusInternalServerError {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": msgs.SearchFailed})
}
