package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/events"
	"github.com/yourusername/jobscout-api/internal/model"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrAnalysisInProgress  = errors.New("analysis already in progress")
	ErrNoCompaniesSelected = errors.New("no companies selected")
	ErrNoCriteria          = errors.New("search criteria not set")
)

// Session is one user's pass through the criteria → companies → analysis
// workflow. It is the orchestrator's Sink: events are applied to the
// session state and then forwarded to subscribers under the same lock.
type Session struct {
	mu        sync.Mutex
	id        string
	step      model.Step
	criteria  *model.SearchCriteria
	companies []model.Company
	analyses  []model.CompanyAnalysis
	analyzing bool
	hub       *events.Hub
	createdAt time.Time
	updatedAt time.Time
	expiresAt time.Time
	now       func() time.Time
}

func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.SessionSnapshot {
	snap := model.SessionSnapshot{
		ID:        s.id,
		Step:      s.step,
		Companies: make([]model.Company, len(s.companies)),
		Analyses:  make([]model.CompanyAnalysis, len(s.analyses)),
		Analyzing: s.analyzing,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.criteria != nil {
		c := *s.criteria
		snap.Criteria = &c
	}
	copy(snap.Companies, s.companies)
	copy(snap.Analyses, s.analyses)
	for _, a := range s.analyses {
		if a.IsLoading {
			snap.Remaining++
		}
	}
	return snap
}

// SetSearchResult stores the criteria and replaces the company list,
// moving the session to the company selection step
func (s *Session) SetSearchResult(criteria model.SearchCriteria, companies []model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzing {
		return ErrAnalysisInProgress
	}

	s.criteria = &criteria
	s.companies = append([]model.Company(nil), companies...)
	s.analyses = nil
	s.step = model.StepSearchCompanies
	s.touchLocked()
	return nil
}

// ToggleCompany flips the selected flag of one company
func (s *Session) ToggleCompany(companyID string) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzing {
		return model.Company{}, ErrAnalysisInProgress
	}

	for i := range s.companies {
		if s.companies[i].ID == companyID {
			s.companies[i].Selected = !s.companies[i].Selected
			s.touchLocked()
			return s.companies[i], nil
		}
	}
	return model.Company{}, ErrCompanyNotFound
}

// SelectedCompanies returns the companies currently flagged for analysis
func (s *Session) SelectedCompanies() []model.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SelectedCompanies(s.companies)
}

// BeginAnalysis captures the current selection and marks the batch as
// running. The pending entries are visible immediately.
func (s *Session) BeginAnalysis() ([]model.Company, model.SearchCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analyzing {
		return nil, model.SearchCriteria{}, ErrAnalysisInProgress
	}
	if s.criteria == nil {
		return nil, model.SearchCriteria{}, ErrNoCriteria
	}
	selected := model.SelectedCompanies(s.companies)
	if len(selected) == 0 {
		return nil, model.SearchCriteria{}, ErrNoCompaniesSelected
	}

	s.analyses = make([]model.CompanyAnalysis, len(selected))
	for i, c := range selected {
		s.analyses[i] = model.PendingAnalysis(c)
	}
	s.analyzing = true
	s.step = model.StepAnalyzeJobs
	s.touchLocked()

	return selected, *s.criteria, nil
}

// Publish applies an orchestration event and forwards it to subscribers
func (s *Session) Publish(evt model.AnalysisEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt.Type {
	case model.EventAnalysisStarted:
		s.analyses = append([]model.CompanyAnalysis(nil), evt.Analyses...)
		s.analyzing = true
	case model.EventCompanyAnalyzed:
		if evt.Analysis != nil {
			s.applyAnalysisLocked(*evt.Analysis)
		}
	case model.EventAnalysisFinished:
		s.analyzing = false
	}

	s.touchLocked()
	s.hub.Publish(evt)
}

// applyAnalysisLocked replaces the matching entry. An entry only ever
// leaves the loading state once; later updates for it are ignored.
func (s *Session) applyAnalysisLocked(a model.CompanyAnalysis) {
	for i := range s.analyses {
		if s.analyses[i].CompanyID != a.CompanyID {
			continue
		}
		if !s.analyses[i].IsLoading {
			log.Warn().Str("session", s.id).Str("companyId", a.CompanyID).Msg("Ignoring repeated analysis update")
			return
		}
		s.analyses[i] = a
		return
	}
	log.Warn().Str("session", s.id).Str("companyId", a.CompanyID).Msg("Analysis update for unknown company")
}

// Subscribe returns the current state and a channel of the events that
// follow it, with nothing lost in between
func (s *Session) Subscribe() (model.SessionSnapshot, chan model.AnalysisEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), s.hub.Subscribe()
}

func (s *Session) Unsubscribe(ch chan model.AnalysisEvent) {
	s.hub.Unsubscribe(ch)
}

// Reset returns the session to the criteria step, dropping companies and results
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzing {
		return ErrAnalysisInProgress
	}

	s.step = model.StepDefineCriteria
	s.companies = nil
	s.analyses = nil
	s.touchLocked()
	return nil
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now()
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.analyzing && now.After(s.expiresAt)
}

func (s *Session) extend(ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = s.now().Add(ttl)
	s.mu.Unlock()
}

// ── Repository ─────────────────────────────────────────

// SessionRepo keeps sessions in memory. Sessions expire after ttl without
// access, except while an analysis batch is running.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session at the criteria step
func (r *SessionRepo) Create() *Session {
	now := r.now()
	s := &Session{
		id:        uuid.NewString(),
		step:      model.StepDefineCriteria,
		hub:       events.NewHub(),
		createdAt: now,
		updatedAt: now,
		expiresAt: now.Add(r.ttl),
		now:       r.now,
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s
}

// Get returns a live session and extends its lifetime
func (r *SessionRepo) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || s.expired(r.now()) {
		return nil, ErrSessionNotFound
	}

	s.extend(r.ttl)
	return s, nil
}

// Delete drops a session and disconnects its subscribers. A running batch
// finishes in the background; its events go nowhere.
func (r *SessionRepo) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.hub.Close()
	return nil
}

// Cleanup removes expired sessions and returns how many were dropped
func (r *SessionRepo) Cleanup() int {
	now := r.now()

	r.mu.Lock()
	var dropped []*Session
	for id, s := range r.sessions {
		if s.expired(now) {
			delete(r.sessions, id)
			dropped = append(dropped, s)
		}
	}
	r.mu.Unlock()

	for _, s := range dropped {
		s.hub.Close()
	}
	return len(dropped)
}

// Len returns the number of stored sessions
func (r *SessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Run removes expired sessions every interval until ctx is cancelled
func (r *SessionRepo) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Cleanup(); n > 0 {
				log.Info().Int("expired", n).Int("active", r.Len()).Msg("Expired sessions removed")
			}
		}
	}
}
