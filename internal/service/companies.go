package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/model"
)

// companyResult is the shape the search prompt asks the model for
type companyResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
	WebsiteURL  string `json:"websiteUrl"`
}

// SearchCompanies asks the model for companies matching the criteria.
// A reply without a JSON array yields an empty list, not an error.
// Transport and service errors are returned to the caller.
func (s *Scout) SearchCompanies(ctx context.Context, criteria string) ([]model.Company, error) {
	if s.gen == nil {
		return nil, ErrMissingAPIKey
	}

	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return nil, ErrEmptyCriteria
	}

	prompt, err := s.locale.companySearchPrompt(criteria, s.maxCompanies)
	if err != nil {
		return nil, err
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error searching companies")
		return nil, fmt.Errorf("searching companies: %w", err)
	}

	companies := parseCompanies(text)

	log.Info().
		Int("criteriaLength", len(criteria)).
		Int("companies", len(companies)).
		Msg("Company search complete")

	return companies, nil
}

// parseCompanies maps a model reply to company records. Elements that fail
// to decode or have no name are skipped; every kept company gets a fresh
// id and starts selected.
func parseCompanies(text string) []model.Company {
	companies := []model.Company{}
	if strings.TrimSpace(text) == "" {
		return companies
	}

	raw, ok := ExtractJSON(text)
	if !ok || !IsJSONArray(raw) {
		return companies
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return companies
	}

	for i, item := range items {
		var c companyResult
		if err := json.Unmarshal(item, &c); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Skipping undecodable company entry")
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		companies = append(companies, model.Company{
			ID:              uuid.NewString(),
			Name:            name,
			Description:     strings.TrimSpace(c.Description),
			RelevanceReason: strings.TrimSpace(c.Relevance),
			WebsiteURL:      strings.TrimSpace(c.WebsiteURL),
			Selected:        true,
		})
	}

	return companies
}
