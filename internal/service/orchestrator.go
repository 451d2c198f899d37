package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/model"
)

// Analyzer screens one company's postings. *Scout satisfies it.
type Analyzer interface {
	AnalyzeCompanyJobs(ctx context.Context, companyName, criteria string) (model.JobAnalysis, error)
}

// Sink receives orchestration events in order
type Sink interface {
	Publish(event model.AnalysisEvent)
}

// SinkFunc adapts a plain function to Sink
type SinkFunc func(event model.AnalysisEvent)

func (f SinkFunc) Publish(event model.AnalysisEvent) { f(event) }

// Orchestrator runs job analysis over a company selection one company at a
// time. At most one analysis is in flight, and per-company results are
// published in input order as soon as each completes.
type Orchestrator struct {
	analyzer Analyzer
	messages Messages
	now      func() time.Time
}

func NewOrchestrator(analyzer Analyzer, messages Messages) *Orchestrator {
	return &Orchestrator{
		analyzer: analyzer,
		messages: messages,
		now:      time.Now,
	}
}

// Run publishes the pending list, then one company.analyzed event per company,
// then analysis.finished. It does not retry, time out or stop early; callers
// that want the batch to outlive a request should pass a detached context.
func (o *Orchestrator) Run(ctx context.Context, companies []model.Company, criteria string, sink Sink) []model.CompanyAnalysis {
	analyses := make([]model.CompanyAnalysis, len(companies))
	for i, c := range companies {
		analyses[i] = model.PendingAnalysis(c)
	}

	sink.Publish(model.AnalysisEvent{
		Type:     model.EventAnalysisStarted,
		Analyses: cloneAnalyses(analyses),
		At:       o.now(),
	})

	log.Info().Int("companies", len(companies)).Msg("Job analysis batch started")
	start := time.Now()
	failed := 0

	for i, company := range companies {
		result, err := o.analyzeOne(ctx, company, criteria)
		if err != nil {
			failed++
			log.Error().Err(err).Str("company", company.Name).Msg("Failed to analyze company")
			result = model.JobAnalysis{Jobs: analyses[i].Jobs, Summary: o.messages.BatchError}
		}

		analyses[i] = analyses[i].Complete(result)

		updated := analyses[i]
		sink.Publish(model.AnalysisEvent{
			Type:     model.EventCompanyAnalyzed,
			Index:    i,
			Analysis: &updated,
			At:       o.now(),
		})
	}

	sink.Publish(model.AnalysisEvent{
		Type:     model.EventAnalysisFinished,
		Index:    len(companies),
		Analyses: cloneAnalyses(analyses),
		At:       o.now(),
	})

	log.Info().
		Int("companies", len(companies)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Job analysis batch finished")

	return analyses
}

// analyzeOne isolates a single company: a panic becomes an error so the
// batch carries on with the next company.
func (o *Orchestrator) analyzeOne(ctx context.Context, company model.Company, criteria string) (result model.JobAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic analyzing %s: %v", company.Name, r)
		}
	}()
	return o.analyzer.AnalyzeCompanyJobs(ctx, company.Name, criteria)
}

func cloneAnalyses(in []model.CompanyAnalysis) []model.CompanyAnalysis {
	out := make([]model.CompanyAnalysis, len(in))
	copy(out, in)
	return out
}
