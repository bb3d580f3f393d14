package service

import (
	"context"

	"authgate/internal/audit"
	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
)

// Refresh rotates a token pair. The issuer tries the transport-carried token
// first and falls back to the body-supplied one; both failing yields one
// generic unauthorized error that does not reveal which path failed.
func (s *Service) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer span.End()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	pair, subject, err := s.tokens.Refresh(req.HeaderToken, req.BodyToken)
	if err != nil {
		if s.metrics != nil {
			s.metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		}
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to refresh tokens")
	}

	if s.metrics != nil {
		s.metrics.TokenRefreshes.WithLabelValues("success").Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Action:  audit.ActionTokensRefreshed,
		Subject: subject,
		Outcome: audit.OutcomeOK,
	})
	return pair, nil
}
