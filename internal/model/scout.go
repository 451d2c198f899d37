package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ── Workflow steps ─────────────────────────────────────

// Step is the position of a scout session in the three-step workflow
type Step int

const (
	StepDefineCriteria Step = iota
	StepSearchCompanies
	StepAnalyzeJobs
)

func (s Step) String() string {
	switch s {
	case StepDefineCriteria:
		return "define_criteria"
	case StepSearchCompanies:
		return "search_companies"
	case StepAnalyzeJobs:
		return "analyze_jobs"
	}
	return "unknown"
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ── Search input ───────────────────────────────────────

// SearchCriteria is what the user types into the criteria form.
// IndustryText drives the company search, JobText screens postings.
type SearchCriteria struct {
	IndustryText string `json:"industryText" binding:"required"`
	JobText      string `json:"jobText" binding:"required"`
}

// Company is one candidate employer returned by the company search
type Company struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	RelevanceReason string `json:"relevanceReason"`
	WebsiteURL      string `json:"websiteUrl,omitempty"`
	Selected        bool   `json:"selected"`
}

// SelectedCompanies returns the companies flagged for analysis, in list order
func SelectedCompanies(companies []Company) []Company {
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// ── Job postings ───────────────────────────────────────

// JobPosting is a single posting screened against the user's criteria
type JobPosting struct {
	Role           Text       `json:"role"`
	Description    Text       `json:"description"`
	Requirements   StringList `json:"requirements"`
	EducationLevel Text       `json:"educationLevel"`
	EmploymentType Text       `json:"employmentType"`
	Salary         Text       `json:"salary,omitempty"`
	Location       Text       `json:"location,omitempty"`
	URL            Text       `json:"url,omitempty"`
	MatchScore     Score      `json:"matchScore"`
	MatchReason    Text       `json:"matchReason"`
}

// Match levels used by the result cards
const (
	MatchHigh   = "high"
	MatchMedium = "medium"
	MatchLow    = "low"
)

// MatchLevel buckets the match score: 80+ high, 50+ medium, otherwise low
func (j JobPosting) MatchLevel() string {
	switch {
	case j.MatchScore >= 80:
		return MatchHigh
	case j.MatchScore >= 50:
		return MatchMedium
	default:
		return MatchLow
	}
}

// JobAnalysis is the outcome of screening one company's postings
type JobAnalysis struct {
	Jobs    []JobPosting `json:"jobs"`
	Summary string       `json:"summary"`
}

// CompanyAnalysis tracks one selected company through the analysis batch.
// It starts loading and leaves the loading state exactly once.
type CompanyAnalysis struct {
	CompanyID   string       `json:"companyId"`
	CompanyName string       `json:"companyName"`
	Jobs        []JobPosting `json:"jobs"`
	Summary     string       `json:"summary"`
	IsAnalyzed  bool         `json:"isAnalyzed"`
	IsLoading   bool         `json:"isLoading"`
}

// PendingAnalysis builds the placeholder entry shown before any result arrives
func PendingAnalysis(c Company) CompanyAnalysis {
	return CompanyAnalysis{
		CompanyID:   c.ID,
		CompanyName: c.Name,
		Jobs:        []JobPosting{},
		IsLoading:   true,
	}
}

// Complete returns a copy of the entry with the analysis applied
func (a CompanyAnalysis) Complete(result JobAnalysis) CompanyAnalysis {
	a.Jobs = result.Jobs
	if a.Jobs == nil {
		a.Jobs = []JobPosting{}
	}
	a.Summary = result.Summary
	a.IsAnalyzed = true
	a.IsLoading = false
	return a
}

// ── Events ─────────────────────────────────────────────

type EventType string

const (
	EventAnalysisStarted  EventType = "analysis.started"
	EventCompanyAnalyzed  EventType = "company.analyzed"
	EventAnalysisFinished EventType = "analysis.finished"
)

// AnalysisEvent is emitted by the orchestrator as the batch progresses.
// Started and finished carry the full list; company events carry one entry.
type AnalysisEvent struct {
	Type     EventType         `json:"type"`
	Index    int               `json:"index"`
	Analysis *CompanyAnalysis  `json:"analysis,omitempty"`
	Analyses []CompanyAnalysis `json:"analyses,omitempty"`
	At       time.Time         `json:"at"`
}

// SessionSnapshot is the read model of a scout session
type SessionSnapshot struct {
	ID        string            `json:"id"`
	Step      Step              `json:"step"`
	Criteria  *SearchCriteria   `json:"criteria,omitempty"`
	Companies []Company         `json:"companies"`
	Analyses  []CompanyAnalysis `json:"analyses"`
	Analyzing bool              `json:"analyzing"`
	Remaining int               `json:"remaining"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ── Lenient decoding for model output ──────────────────

// Score is a 0-100 match score. Models sometimes answer "85" or 85.5,
// so both numbers and numeric strings are accepted and clamped.
type Score int

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var str string
		if json.Unmarshal(data, &str) != nil {
			*s = 0
			return nil
		}
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		f, err = strconv.ParseFloat(str, 64)
		if err != nil {
			*s = 0
			return nil
		}
	}

	*s = Score(clamp(int(math.Round(f)), 0, 100))
	return nil
}

// Text is a free-text field. Models send salaries as 6000000 or remote
// flags as true, so scalars are kept in their JSON spelling and string
// arrays are joined.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) != nil {
			*t = ""
			return nil
		}
		*t = Text(s)
	case '[':
		var l StringList
		_ = l.UnmarshalJSON(data)
		*t = Text(strings.Join(l, ", "))
	default:
		// numbers, booleans and objects keep their compact JSON form
		var buf bytes.Buffer
		if json.Compact(&buf, data) != nil {
			*t = ""
			return nil
		}
		*t = Text(buf.String())
	}
	return nil
}

// StringList accepts either a JSON array of strings or a single string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if json.Unmarshal(data, &single) != nil {
			*l = StringList{}
			return nil
		}
		if strings.TrimSpace(single) == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{single}
		return nil
	}

	var items []any
	if json.Unmarshal(data, &items) != nil {
		*l = StringList{}
		return nil
	}
	out := make(StringList, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			b, _ := json.Marshal(v)
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
