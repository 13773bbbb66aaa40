package optimize

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// DefaultAdvisorTimeout bounds the remote advisory fetch when the caller
// does not configure one.
const DefaultAdvisorTimeout = 8 * time.Second

// AdvisorTarget identifies the database the remote advisory API should
// analyze. Fields fill the URL template's placeholders; empty fields leave
// their placeholder untouched and are skipped as query parameters.
type AdvisorTarget struct {
	ProjectID     string
	DatabaseName  string
	NeonProjectID string
	BranchID      string
}

// Advisor fetches suggestion sets from a remote advisory API. A zero URL
// template disables it.
type Advisor struct {
	urlTemplate string
	timeout     time.Duration
	client      *resty.Client
	log         *logger.Logger
}

// NewAdvisor builds an advisor for the given URL template. timeout <= 0
// falls back to DefaultAdvisorTimeout.
func NewAdvisor(urlTemplate string, timeout time.Duration, log *logger.Logger) *Advisor {
	if timeout <= 0 {
		timeout = DefaultAdvisorTimeout
	}
	return &Advisor{
		urlTemplate: urlTemplate,
		timeout:     timeout,
		client:      resty.New().SetTimeout(timeout),
		log:         log,
	}
}

// Enabled reports whether a URL template is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.urlTemplate != ""
}

// Fetch retrieves a suggestion set for the target. Any transport error,
// timeout, or non-2xx status is returned as an error so the caller can fall
// back to live analysis.
func (a *Advisor) Fetch(ctx context.Context, target AdvisorTarget) (*SuggestionSet, error) {
	if !a.Enabled() {
		return nil, errs.New(errs.ErrKindInvalidInput, "advisor URL not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var set SuggestionSet
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&set).
		Get(ExpandAdvisorURL(a.urlTemplate, target))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "advisory API unreachable", err)
	}
	if resp.IsError() {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "advisory API returned status %d", resp.StatusCode())
	}

	set.Source = SourceAdvisor
	set.Finalize(set.TotalSuggestions > 0)
	return &set, nil
}

// advisorPlaceholders maps URL template placeholders to target field
// accessors. The same names double as query parameter keys.
var advisorPlaceholders = []struct {
	name  string
	value func(AdvisorTarget) string
}{
	{"projectId", func(t AdvisorTarget) string { return t.ProjectID }},
	{"databaseName", func(t AdvisorTarget) string { return t.DatabaseName }},
	{"neonProjectId", func(t AdvisorTarget) string { return t.NeonProjectID }},
	{"branchId", func(t AdvisorTarget) string { return t.BranchID }},
}

// ExpandAdvisorURL substitutes {projectId}, {databaseName}, {neonProjectId},
// and {branchId} placeholders in the template. When the template carries no
// placeholders at all, the non-empty target fields are appended as query
// parameters instead.
func ExpandAdvisorURL(template string, target AdvisorTarget) string {
	expanded := template
	substituted := false
	for _, p := range advisorPlaceholders {
		ph := "{" + p.name + "}"
		if strings.Contains(expanded, ph) {
			expanded = strings.ReplaceAll(expanded, ph, p.value(target))
			substituted = true
		}
	}
	if substituted {
		return expanded
	}

	sep := "?"
	if strings.Contains(expanded, "?") {
		sep = "&"
	}
	var sb strings.Builder
	sb.WriteString(expanded)
	for _, p := range advisorPlaceholders {
		v := p.value(target)
		if v == "" {
			continue
		}
		sb.WriteString(sep)
		sb.WriteString(p.name)
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(v))
		sep = "&"
	}
	return sb.String()
}
