// Package relay composes identifier resolution, the Sentry fetch and
// stacktrace flattening into a single issue lookup.
package relay

import (
	"context"
	"errors"
	"time"

	"github.com/danielolaszy/sentry-relay/internal/issueid"
	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/metrics"
	"github.com/danielolaszy/sentry-relay/internal/sentry"
	"github.com/danielolaszy/sentry-relay/internal/stacktrace"
	"github.com/danielolaszy/sentry-relay/pkg/models"
)

// IssueFetcher loads a single issue from Sentry.
type IssueFetcher interface {
	GetIssue(ctx context.Context, id, token string) (*models.SentryIssue, error)
}

// TokenProvider returns the current Sentry auth token.
type TokenProvider interface {
	Token() (string, error)
}

// Service performs issue lookups.
type Service struct {
	fetcher IssueFetcher
	tokens  TokenProvider
	metrics *metrics.Metrics
}

// NewService creates a Service. m may be nil.
func NewService(fetcher IssueFetcher, tokens TokenProvider, m *metrics.Metrics) *Service {
	return &Service{fetcher: fetcher, tokens: tokens, metrics: m}
}

// LookupIssue resolves idOrURL, fetches the issue and reshapes it.
//
// Errors match config.ErrNotConfigured, issueid.ErrInvalidInput,
// sentry.ErrUnauthorized or sentry.ErrUpstream.
func (s *Service) LookupIssue(ctx context.Context, idOrURL string) (*models.IssueResponse, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return nil, err
	}

	id, err := issueid.Resolve(idOrURL)
	if err != nil {
		logging.Debug("rejected issue identifier", "input", idOrURL, "error", err)
		return nil, err
	}

	start := time.Now()
	issue, err := s.fetcher.GetIssue(ctx, id, token)
	s.observe(err, time.Since(start))
	if err != nil {
		return nil, err
	}

	resp := &models.IssueResponse{
		Title:      issue.Title,
		ID:         issue.ID,
		Status:     issue.Status,
		Level:      issue.Level,
		FirstSeen:  issue.FirstSeen,
		LastSeen:   issue.LastSeen,
		Count:      int64(issue.Count),
		Stacktrace: stacktrace.Flatten(issue.LatestEvent),
	}

	logging.Info("looked up sentry issue",
		"issue_id", resp.ID,
		"exceptions", len(resp.Stacktrace.Exceptions),
		"frames", len(resp.Stacktrace.Frames))
	return resp, nil
}

func (s *Service) observe(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, sentry.ErrUnauthorized):
		outcome = metrics.OutcomeUnauthorized
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveUpstream(outcome, elapsed)
}
