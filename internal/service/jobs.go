package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/model"
)

// jobAnalysisResult is the object shape the analysis prompt asks for
type jobAnalysisResult struct {
	Summary json.RawMessage   `json:"summary"`
	Jobs    []json.RawMessage `json:"jobs"`
}

// AnalyzeCompanyJobs screens one company's postings against the criteria.
//
// It runs inside a per-company loop, so it degrades instead of failing: an
// empty reply, an unparsable reply and a transport error all come back as an
// empty job list with an explanatory summary. The only error returned is
// ErrMissingAPIKey, raised before any network call.
func (s *Scout) AnalyzeCompanyJobs(ctx context.Context, companyName, criteria string) (result model.JobAnalysis, err error) {
	if s.gen == nil {
		return model.JobAnalysis{Jobs: []model.JobPosting{}}, ErrMissingAPIKey
	}

	msgs := s.locale.Messages
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("company", companyName).Interface("panic", r).Msg("Recovered while analyzing jobs")
			result = degraded(msgs.AnalysisError)
			err = nil
		}
	}()

	prompt, perr := s.locale.jobAnalysisPrompt(companyName, criteria)
	if perr != nil {
		log.Error().Err(perr).Str("company", companyName).Msg("Error building job analysis prompt")
		return degraded(msgs.AnalysisError), nil
	}

	text, gerr := s.gen.Generate(ctx, prompt)
	if gerr != nil {
		log.Error().Err(gerr).Str("company", companyName).Msg("Error analyzing jobs")
		return degraded(msgs.AnalysisError), nil
	}

	result = parseJobAnalysis(text, msgs)

	log.Info().
		Str("company", companyName).
		Int("jobs", len(result.Jobs)).
		Msg("Job analysis complete")

	return result, nil
}

// parseJobAnalysis maps a model reply to a JobAnalysis, never failing
func parseJobAnalysis(text string, msgs Messages) model.JobAnalysis {
	if strings.TrimSpace(text) == "" {
		return degraded(msgs.NoData)
	}

	raw, ok := ExtractJSON(text)
	if !ok || !IsJSONObject(raw) {
		return degraded(msgs.ParseFailed)
	}

	var parsed jobAnalysisResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// "jobs" present but not an array; keep whatever summary there is
		var summaryOnly struct {
			Summary json.RawMessage `json:"summary"`
		}
		if json.Unmarshal(raw, &summaryOnly) != nil {
			return degraded(msgs.ParseFailed)
		}
		parsed = jobAnalysisResult{Summary: summaryOnly.Summary}
	}

	jobs := make([]model.JobPosting, 0, len(parsed.Jobs))
	for i, item := range parsed.Jobs {
		if !IsJSONObject(item) {
			log.Debug().Int("index", i).Msg("Skipping non-object job entry")
			continue
		}
		var job model.JobPosting
		if err := json.Unmarshal(item, &job); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Skipping undecodable job entry")
			continue
		}
		if job.Requirements == nil {
			job.Requirements = model.StringList{}
		}
		jobs = append(jobs, job)
	}

	summary := stringValue(parsed.Summary)
	if summary == "" {
		summary = msgs.AnalysisComplete
	}

	return model.JobAnalysis{Jobs: jobs, Summary: summary}
}

func degraded(summary string) model.JobAnalysis {
	return model.JobAnalysis{Jobs: []model.JobPosting{}, Summary: summary}
}

// stringValue returns raw as a trimmed string if it holds one
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
