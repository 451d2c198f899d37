package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/jobscout-api/internal/service"
)

// ScoutHandler exposes the two model calls without any session state
type ScoutHandler struct {
	scout *service.Scout
}

func NewScoutHandler(scout *service.Scout) *ScoutHandler {
	return &ScoutHandler{scout: scout}
}

type searchCompaniesRequest struct {
	Criteria string `json:"criteria" binding:"required"`
}

// SearchCompanies handles POST /companies/search
func (h *ScoutHandler) SearchCompanies(c *gin.Context) {
	var req searchCompaniesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "criteria is required"})
		return
	}

	companies, err := h.scout.SearchCompanies(c.Request.Context(), req.Criteria)
	if err != nil {
		respondSearchError(c, err, h.scout.Messages())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"count":     len(companies),
	})
}

type analyzeCompanyRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Criteria    string `json:"criteria" binding:"required"`
}

// AnalyzeCompany handles POST /companies/analyze
//
// Upstream failures are reported in the summary with a 200, the same way a
// batch reports them per company.
func (h *ScoutHandler) AnalyzeCompany(c *gin.Context) {
	var req analyzeCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyName and criteria are required"})
		return
	}

	name := strings.TrimSpace(req.CompanyName)
	criteria := strings.TrimSpace(req.Criteria)
	if name == "" || criteria == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyName and criteria are required"})
		return
	}

	result, err := h.scout.AnalyzeCompanyJobs(c.Request.Context(), name, criteria)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
