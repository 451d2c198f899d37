package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/jobscout-api/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRepo(ttl time.Duration) (*SessionRepo, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	r := NewSessionRepo(ttl)
	r.now = clock.Now
	return r, clock
}

var testCriteria = model.SearchCriteria{IndustryText: "robotics", JobText: "no degree required"}

func testCompanies() []model.Company {
	return []model.Company{
		{ID: "a", Name: "Acme", Selected: true},
		{ID: "b", Name: "Beta", Selected: true},
		{ID: "c", Name: "Gamma", Selected: true},
	}
}

func TestSessionWorkflow(t *testing.T) {
	r, _ := newTestRepo(time.Hour)
	s := r.Create()

	snap := s.Snapshot()
	if snap.Step != model.StepDefineCriteria || snap.Criteria != nil || len(snap.Companies) != 0 {
		t.Fatalf("new session = %+v", snap)
	}

	if _, _, err := s.BeginAnalysis(); !errors.Is(err, ErrNoCriteria) {
		t.Errorf("BeginAnalysis before search: %v", err)
	}

	if err := s.SetSearchResult(testCriteria, testCompanies()); err != nil {
		t.Fatalf("SetSearchResult: %v", err)
	}
	snap = s.Snapshot()
	if snap.Step != model.StepSearchCompanies || snap.Criteria.JobText != "no degree required" || len(snap.Companies) != 3 {
		t.Fatalf("after search = %+v", snap)
	}

	c, err := s.ToggleCompany("b")
	if err != nil || c.Selected {
		t.Fatalf("ToggleCompany(b) = %+v, %v", c, err)
	}
	if got := s.SelectedCompanies(); len(got) != 2 || got[1].ID != "c" {
		t.Errorf("SelectedCompanies = %+v", got)
	}
	if _, err := s.ToggleCompany("zzz"); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("ToggleCompany(unknown): %v", err)
	}

	selected, criteria, err := s.BeginAnalysis()
	if err != nil {
		t.Fatalf("BeginAnalysis: %v", err)
	}
	if len(selected) != 2 || selected[0].ID != "a" || selected[1].ID != "c" {
		t.Errorf("selected = %+v", selected)
	}
	if criteria != testCriteria {
		t.Errorf("criteria = %+v", criteria)
	}

	snap = s.Snapshot()
	if snap.Step != model.StepAnalyzeJobs || !snap.Analyzing || snap.Remaining != 2 || len(snap.Analyses) != 2 {
		t.Fatalf("after begin = %+v", snap)
	}

	// state changes are rejected while the batch runs
	if _, _, err := s.BeginAnalysis(); !errors.Is(err, ErrAnalysisInProgress) {
		t.Errorf("second BeginAnalysis: %v", err)
	}
	if _, err := s.ToggleCompany("a"); !errors.Is(err, ErrAnalysisInProgress) {
		t.Errorf("ToggleCompany during batch: %v", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrAnalysisInProgress) {
		t.Errorf("Reset during batch: %v", err)
	}
	if err := s.SetSearchResult(testCriteria, nil); !errors.Is(err, ErrAnalysisInProgress) {
		t.Errorf("SetSearchResult during batch: %v", err)
	}

	s.Publish(model.AnalysisEvent{Type: model.EventAnalysisFinished})
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap = s.Snapshot()
	if snap.Step != model.StepDefineCriteria || len(snap.Companies) != 0 || len(snap.Analyses) != 0 || snap.Analyzing {
		t.Errorf("after reset = %+v", snap)
	}
}

func TestSessionNothingSelected(t *testing.T) {
	r, _ := newTestRepo(time.Hour)
	s := r.Create()

	companies := testCompanies()
	for i := range companies {
		companies[i].Selected = false
	}
	_ = s.SetSearchResult(testCriteria, companies)

	if _, _, err := s.BeginAnalysis(); !errors.Is(err, ErrNoCompaniesSelected) {
		t.Errorf("BeginAnalysis: %v", err)
	}
	if s.Snapshot().Analyzing {
		t.Error("session marked analyzing after rejected start")
	}
}

func TestSessionAppliesEvents(t *testing.T) {
	r, _ := newTestRepo(time.Hour)
	s := r.Create()
	_ = s.SetSearchResult(testCriteria, testCompanies())
	selected, _, _ := s.BeginAnalysis()

	snap, ch := s.Subscribe()
	defer s.Unsubscribe(ch)
	if snap.Remaining != 3 {
		t.Fatalf("Remaining = %d, want 3", snap.Remaining)
	}

	pending := make([]model.CompanyAnalysis, len(selected))
	for i, c := range selected {
		pending[i] = model.PendingAnalysis(c)
	}
	s.Publish(model.AnalysisEvent{Type: model.EventAnalysisStarted, Analyses: pending})

	done := pending[1].Complete(model.JobAnalysis{Summary: "hiring"})
	s.Publish(model.AnalysisEvent{Type: model.EventCompanyAnalyzed, Index: 1, Analysis: &done})

	snap = s.Snapshot()
	if snap.Remaining != 2 || snap.Analyses[1].Summary != "hiring" || snap.Analyses[1].IsLoading {
		t.Fatalf("after one update = %+v", snap.Analyses)
	}

	// an entry leaves the loading state only once
	again := pending[1].Complete(model.JobAnalysis{Summary: "overwritten"})
	s.Publish(model.AnalysisEvent{Type: model.EventCompanyAnalyzed, Index: 1, Analysis: &again})
	if got := s.Snapshot().Analyses[1].Summary; got != "hiring" {
		t.Errorf("repeated update applied: %q", got)
	}

	// unknown ids are ignored
	stray := model.PendingAnalysis(model.Company{ID: "zzz"}).Complete(model.JobAnalysis{})
	s.Publish(model.AnalysisEvent{Type: model.EventCompanyAnalyzed, Analysis: &stray})
	if len(s.Snapshot().Analyses) != 3 {
		t.Error("stray update changed the analysis list")
	}

	s.Publish(model.AnalysisEvent{Type: model.EventAnalysisFinished})
	if s.Snapshot().Analyzing {
		t.Error("still analyzing after finished event")
	}

	wantTypes := []model.EventType{
		model.EventAnalysisStarted,
		model.EventCompanyAnalyzed,
		model.EventCompanyAnalyzed,
		model.EventCompanyAnalyzed,
		model.EventAnalysisFinished,
	}
	for i, want := range wantTypes {
		evt := <-ch
		if evt.Type != want {
			t.Errorf("event %d = %s, want %s", i, evt.Type, want)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r, _ := newTestRepo(time.Hour)
	s := r.Create()
	_ = s.SetSearchResult(testCriteria, testCompanies())

	snap := s.Snapshot()
	snap.Companies[0].Selected = false
	snap.Criteria.JobText = "changed"

	again := s.Snapshot()
	if !again.Companies[0].Selected || again.Criteria.JobText != testCriteria.JobText {
		t.Error("mutating a snapshot changed the session")
	}
}

func TestSessionRepoExpiry(t *testing.T) {
	r, clock := newTestRepo(10 * time.Minute)

	idle := r.Create()
	active := r.Create()
	busy := r.Create()
	_ = busy.SetSearchResult(testCriteria, testCompanies())
	if _, _, err := busy.BeginAnalysis(); err != nil {
		t.Fatalf("BeginAnalysis: %v", err)
	}

	clock.Advance(8 * time.Minute)
	if _, err := r.Get(active.ID()); err != nil {
		t.Fatalf("Get(active): %v", err)
	}

	clock.Advance(5 * time.Minute)
	if _, err := r.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(idle) after ttl: %v", err)
	}
	if _, err := r.Get(active.ID()); err != nil {
		t.Errorf("Get(active) was extended but expired: %v", err)
	}

	if n := r.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d, want 1", n)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}

	// a running batch keeps its session alive
	if _, err := r.Get(busy.ID()); err != nil {
		t.Errorf("Get(busy): %v", err)
	}
}

func TestSessionRepoDelete(t *testing.T) {
	r, _ := newTestRepo(time.Hour)
	s := r.Create()
	_, ch := s.Subscribe()

	if err := r.Delete(s.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber not disconnected on delete")
	}
	if err := r.Delete(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing): %v", err)
	}
}
