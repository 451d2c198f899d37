package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/jobscout-api/internal/model"
)

const heartbeatInterval = 15 * time.Second

// Events handles GET /sessions/:id/events
//
// Server-sent events: a "snapshot" of the session first, then every
// analysis event in order. The stream ends after analysis.finished, or right
// after the snapshot when no batch is running.
func (h *SessionHandler) Events(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	snap, ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("snapshot", snap)
	c.Writer.Flush()
	if !snap.Analyzing {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	ctx := c.Request.Context()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return evt.Type != model.EventAnalysisFinished
		}
	})
}
