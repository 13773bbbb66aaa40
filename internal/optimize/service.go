package optimize

import (
	"context"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// Service layers the three suggestion sources: remote advisor, live
// analysis, canned defaults. Suggestions never fails; each source's error
// only demotes the request to the next source.
type Service struct {
	advisor  *Advisor
	analyzer *Analyzer
	applier  *Applier
	log      *logger.Logger
}

// NewService wires a suggestion service.
func NewService(advisor *Advisor, analyzer *Analyzer, applier *Applier, log *logger.Logger) *Service {
	return &Service{advisor: advisor, analyzer: analyzer, applier: applier, log: log}
}

// Suggestions resolves a suggestion set for the target database. pool may be
// nil when the project's pool could not be resolved; live analysis is then
// skipped.
func (s *Service) Suggestions(ctx context.Context, pool dbconn.Pool, target AdvisorTarget) *SuggestionSet {
	if s.advisor.Enabled() {
		set, err := s.advisor.Fetch(ctx, target)
		if err == nil {
			return set
		}
		s.log.Warnf("advisory API failed, falling back to live analysis: %v", err)
	}

	if pool != nil {
		set, err := s.analyzer.Analyze(ctx, pool)
		if err == nil {
			return set
		}
		s.log.Warnf("live analysis failed, falling back to defaults: %v", err)
	}

	return DefaultSuggestions()
}

// Apply forwards to the applier.
func (s *Service) Apply(ctx context.Context, pool dbconn.Pool, req ApplyRequest) (*ApplyResult, error) {
	return s.applier.Apply(ctx, pool, req)
}
