package service

import (
	"context"
	"testing"
)

// generatorFunc adapts a function to Generator
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func reply(text string) Generator {
	return generatorFunc(func(context.Context, string) (string, error) {
		return text, nil
	})
}

func newTestScout(t *testing.T, gen Generator) *Scout {
	t.Helper()
	locale, err := LoadLocale("en")
	if err != nil {
		t.Fatalf("LoadLocale: %v", err)
	}
	s, err := NewScout(gen, locale, 5)
	if err != nil {
		t.Fatalf("NewScout: %v", err)
	}
	return s
}

func TestNewScout(t *testing.T) {
	if _, err := NewScout(reply(""), nil, 5); err == nil {
		t.Error("expected error without locale")
	}

	locale, _ := LoadLocale("en")
	s, err := NewScout(nil, locale, 0)
	if err != nil {
		t.Fatalf("NewScout: %v", err)
	}
	if s.maxCompanies != 10 {
		t.Errorf("maxCompanies = %d, want default 10", s.maxCompanies)
	}
	if s.Ready() {
		t.Error("scout without generator reports ready")
	}
	if s.Messages().NoData == "" {
		t.Error("messages not loaded")
	}
}
