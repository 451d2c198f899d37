package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/model"
	"github.com/yourusername/jobscout-api/internal/repository"
	"github.com/yourusername/jobscout-api/internal/service"
)

// SessionHandler drives the three-step workflow: criteria, company
// selection, per-company analysis.
type SessionHandler struct {
	sessions     *repository.SessionRepo
	scout        *service.Scout
	orchestrator *service.Orchestrator
	batches      sync.WaitGroup
}

func NewSessionHandler(sessions *repository.SessionRepo, scout *service.Scout, orchestrator *service.Orchestrator) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		scout:        scout,
		orchestrator: orchestrator,
	}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.sessions.Create()
	log.Info().Str("session", s.ID()).Msg("Session created")
	c.JSON(http.StatusCreated, s.Snapshot())
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// Search handles POST /sessions/:id/search
//
// Runs the company search on the industry text and stores the criteria and
// results on the session. On failure the session is left untouched.
func (h *SessionHandler) Search(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var criteria model.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "industryText and jobText are required"})
		return
	}
	criteria.IndustryText = strings.TrimSpace(criteria.IndustryText)
	criteria.JobText = strings.TrimSpace(criteria.JobText)
	if criteria.IndustryText == "" || criteria.JobText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "industryText and jobText are required"})
		return
	}

	if s.Snapshot().Analyzing {
		respondError(c, repository.ErrAnalysisInProgress)
		return
	}

	companies, err := h.scout.SearchCompanies(c.Request.Context(), criteria.IndustryText)
	if err != nil {
		respondSearchError(c, err, h.scout.Messages())
		return
	}

	if err := s.SetSearchResult(criteria, companies); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.Snapshot())
}

// ToggleCompany handles POST /sessions/:id/companies/:companyId/toggle
func (h *SessionHandler) ToggleCompany(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	company, err := s.ToggleCompany(c.Param("companyId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// StartAnalysis handles POST /sessions/:id/analysis
//
// The batch runs in the background on a context detached from the request;
// progress is delivered through GET /sessions/:id/events.
func (h *SessionHandler) StartAnalysis(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.scout.Ready() {
		respondError(c, service.ErrMissingAPIKey)
		return
	}

	companies, criteria, err := s.BeginAnalysis()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	h.batches.Add(1)
	go func() {
		defer h.batches.Done()
		h.orchestrator.Run(ctx, companies, criteria.JobText, s)
	}()

	log.Info().
		Str("session", s.ID()).
		Int("companies", len(companies)).
		Msg("Analysis started")

	c.JSON(http.StatusAccepted, s.Snapshot())
}

// Reset handles POST /sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.Reset(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.Snapshot())
}

// Wait blocks until every running analysis batch has finished or ctx ends
func (h *SessionHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.batches.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
