package service

import (
	"fmt"
)

// Scout issues the two model calls the workflow needs: one company search
// per criteria and one job analysis per company. It holds no per-call state.
type Scout struct {
	gen          Generator
	locale       *Locale
	maxCompanies int
}

// NewScout wires a generator to a locale. gen may be nil when no credential
// is configured; every call then fails with ErrMissingAPIKey.
func NewScout(gen Generator, locale *Locale, maxCompanies int) (*Scout, error) {
	if locale == nil {
		return nil, fmt.Errorf("locale is required")
	}
	if maxCompanies < 1 {
		maxCompanies = 10
	}
	return &Scout{gen: gen, locale: locale, maxCompanies: maxCompanies}, nil
}

// Messages exposes the localized fixed messages
func (s *Scout) Messages() Messages {
	return s.locale.Messages
}

// Ready reports whether a generator is configured
func (s *Scout) Ready() bool {
	return s.gen != nil
}
