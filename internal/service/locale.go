package service

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var localesYAML []byte

// Messages are the fixed summaries and alerts shown to the user
type Messages struct {
	NoData           string `yaml:"no_data"`
	ParseFailed      string `yaml:"parse_failed"`
	AnalysisError    string `yaml:"analysis_error"`
	AnalysisComplete string `yaml:"analysis_complete"`
	BatchError       string `yaml:"batch_error"`
	SearchFailed     string `yaml:"search_failed"`
}

type localeEntry struct {
	CompanySearchPrompt string   `yaml:"company_search_prompt"`
	JobAnalysisPrompt   string   `yaml:"job_analysis_prompt"`
	Messages            Messages `yaml:"messages"`
}

// Locale holds the parsed prompts and messages for one output language
type Locale struct {
	Language      string
	Messages      Messages
	companyPrompt *template.Template
	jobPrompt     *template.Template
}

type promptData struct {
	Criteria     string
	CompanyName  string
	MaxCompanies int
}

// LoadLocale parses the embedded catalog entry for lang
func LoadLocale(lang string) (*Locale, error) {
	var catalog map[string]localeEntry
	if err := yaml.Unmarshal(localesYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parsing locale catalog: %w", err)
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	entry, ok := catalog[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported output language %q", lang)
	}

	companyTmpl, err := template.New(lang + "/company").Option("missingkey=error").Parse(entry.CompanySearchPrompt)
	if err != nil {
		return nil, fmt.Errorf("parsing company search prompt: %w", err)
	}
	jobTmpl, err := template.New(lang + "/jobs").Option("missingkey=error").Parse(entry.JobAnalysisPrompt)
	if err != nil {
		return nil, fmt.Errorf("parsing job analysis prompt: %w", err)
	}

	return &Locale{
		Language:      lang,
		Messages:      entry.Messages,
		companyPrompt: companyTmpl,
		jobPrompt:     jobTmpl,
	}, nil
}

func (l *Locale) companySearchPrompt(criteria string, maxCompanies int) (string, error) {
	return render(l.companyPrompt, promptData{Criteria: criteria, MaxCompanies: maxCompanies})
}

func (l *Locale) jobAnalysisPrompt(companyName, criteria string) (string, error) {
	return render(l.jobPrompt, promptData{CompanyName: companyName, Criteria: criteria})
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
